package scene

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
)

type ObjectType string

const (
	ObjectTypeImage    ObjectType = "image"
	ObjectTypeRect     ObjectType = "rect"
	ObjectTypeCircle   ObjectType = "circle"
	ObjectTypeTriangle ObjectType = "triangle"
	ObjectTypeText     ObjectType = "text"
	ObjectTypeIcon     ObjectType = "icon"
	ObjectTypePath     ObjectType = "path"
	ObjectTypeLine     ObjectType = "line"
	ObjectTypeGroup    ObjectType = "group"
	ObjectTypeCropzone ObjectType = "cropzone"
)

// IsShape reports whether the type is one of the editable shapes.
func (t ObjectType) IsShape() bool {
	return t == ObjectTypeRect || t == ObjectTypeCircle || t == ObjectTypeTriangle
}

// Property keys understood by Object.Props and Object.Apply.
const (
	PropLeft           = "left"
	PropTop            = "top"
	PropWidth          = "width"
	PropHeight         = "height"
	PropAngle          = "angle"
	PropScaleX         = "scaleX"
	PropScaleY         = "scaleY"
	PropFlipX          = "flipX"
	PropFlipY          = "flipY"
	PropFill           = "fill"
	PropStroke         = "stroke"
	PropStrokeWidth    = "strokeWidth"
	PropOpacity        = "opacity"
	PropRx             = "rx"
	PropRy             = "ry"
	PropText           = "text"
	PropFontSize       = "fontSize"
	PropFontFamily     = "fontFamily"
	PropFontWeight     = "fontWeight"
	PropFontStyle      = "fontStyle"
	PropTextAlign      = "textAlign"
	PropTextDecoration = "textDecoration"
	PropIconType       = "iconType"
	PropPath           = "path"
)

// Props is a partial set of object properties keyed by property name.
type Props map[string]any

// Keys returns the property names in sorted order.
func (p Props) Keys() []string {
	keys := slices.Collect(maps.Keys(p))
	sort.Strings(keys)
	return keys
}

// Object is a drawable item in the scene graph.
type Object struct {
	ID   string     `json:"id"`
	Type ObjectType `json:"type"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
	FlipX  bool    `json:"flipX"`
	FlipY  bool    `json:"flipY"`

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity"`

	Rx float64 `json:"rx,omitempty"`
	Ry float64 `json:"ry,omitempty"`

	Text           string  `json:"text,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	FontFamily     string  `json:"fontFamily,omitempty"`
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty"`

	IconType string `json:"iconType,omitempty"`
	Path     string `json:"path,omitempty"`
	AssetID  string `json:"assetId,omitempty"`

	Members []*Object `json:"members,omitempty"`
}

// NewObject returns an object of the given type with neutral geometry.
func NewObject(t ObjectType) *Object {
	return &Object{Type: t, ScaleX: 1, ScaleY: 1, Opacity: 1}
}

// Clone returns a deep copy, including group members.
func (o *Object) Clone() *Object {
	c := *o
	if len(o.Members) > 0 {
		c.Members = make([]*Object, len(o.Members))
		for i, m := range o.Members {
			c.Members[i] = m.Clone()
		}
	}
	return &c
}

// Props returns the current values of the named keys. With no keys it returns every key.
func (o *Object) Props(keys ...string) (Props, error) {
	if len(keys) == 0 {
		keys = allKeys
	}
	out := make(Props, len(keys))
	for _, k := range keys {
		v, err := o.get(k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Apply writes every key of p. Nothing is written when any key or value is rejected.
func (o *Object) Apply(p Props) error {
	next := *o
	for _, k := range p.Keys() {
		if err := next.set(k, p[k]); err != nil {
			return err
		}
	}
	*o = next
	return nil
}

var allKeys = []string{
	PropLeft, PropTop, PropWidth, PropHeight, PropAngle, PropScaleX, PropScaleY,
	PropFlipX, PropFlipY, PropFill, PropStroke, PropStrokeWidth, PropOpacity, PropRx, PropRy,
	PropText, PropFontSize, PropFontFamily, PropFontWeight, PropFontStyle, PropTextAlign,
	PropTextDecoration, PropIconType, PropPath,
}

func (o *Object) floatField(key string) *float64 {
	switch key {
	case PropLeft:
		return &o.Left
	case PropTop:
		return &o.Top
	case PropWidth:
		return &o.Width
	case PropHeight:
		return &o.Height
	case PropAngle:
		return &o.Angle
	case PropScaleX:
		return &o.ScaleX
	case PropScaleY:
		return &o.ScaleY
	case PropStrokeWidth:
		return &o.StrokeWidth
	case PropOpacity:
		return &o.Opacity
	case PropRx:
		return &o.Rx
	case PropRy:
		return &o.Ry
	case PropFontSize:
		return &o.FontSize
	}
	return nil
}

func (o *Object) stringField(key string) *string {
	switch key {
	case PropFill:
		return &o.Fill
	case PropStroke:
		return &o.Stroke
	case PropText:
		return &o.Text
	case PropFontFamily:
		return &o.FontFamily
	case PropFontWeight:
		return &o.FontWeight
	case PropFontStyle:
		return &o.FontStyle
	case PropTextAlign:
		return &o.TextAlign
	case PropTextDecoration:
		return &o.TextDecoration
	case PropIconType:
		return &o.IconType
	case PropPath:
		return &o.Path
	}
	return nil
}

func (o *Object) boolField(key string) *bool {
	switch key {
	case PropFlipX:
		return &o.FlipX
	case PropFlipY:
		return &o.FlipY
	}
	return nil
}

func (o *Object) get(key string) (any, error) {
	if f := o.floatField(key); f != nil {
		return *f, nil
	}
	if s := o.stringField(key); s != nil {
		return *s, nil
	}
	if b := o.boolField(key); b != nil {
		return *b, nil
	}
	return nil, fmt.Errorf("%w: unknown property %q", ErrInvalidParameter, key)
}

func (o *Object) set(key string, v any) error {
	if f := o.floatField(key); f != nil {
		n, ok := ToFloat(v)
		if !ok {
			return fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidParameter, key, v)
		}
		*f = n
		return nil
	}
	if s := o.stringField(key); s != nil {
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidParameter, key, v)
		}
		*s = str
		return nil
	}
	if b := o.boolField(key); b != nil {
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: %s must be a bool, got %T", ErrInvalidParameter, key, v)
		}
		*b = bv
		return nil
	}
	return fmt.Errorf("%w: unknown property %q", ErrInvalidParameter, key)
}

// ToFloat converts Go and JSON-decoded numeric values.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
