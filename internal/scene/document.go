package scene

// Document is the serialisable state of a scene graph.
type Document struct {
	Background *Image    `json:"background,omitempty"`
	Size       Dimension `json:"size"`
	MaxSize    Dimension `json:"maxSize"`
	Objects    []*Object `json:"objects"`
}

// Snapshot captures the whole scene.
func (g *Graph) Snapshot() Document {
	objs := g.Objects()

	g.mu.RLock()
	defer g.mu.RUnlock()
	return Document{
		Background: g.background.Clone(),
		Size:       g.size,
		MaxSize:    g.maxSize,
		Objects:    objs,
	}
}

// Load replaces the whole scene with doc.
func (g *Graph) Load(doc Document) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.background = doc.Background.Clone()
	g.size = doc.Size
	if doc.MaxSize.Width > 0 && doc.MaxSize.Height > 0 {
		g.maxSize = doc.MaxSize
	}
	g.objects = make([]*Object, 0, len(doc.Objects))
	g.byID = make(map[string]*Object, len(doc.Objects))
	for _, o := range doc.Objects {
		if o == nil || o.ID == "" {
			continue
		}
		c := o.Clone()
		g.objects = append(g.objects, c)
		g.byID[c.ID] = c
	}
}
