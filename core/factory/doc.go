// Package factory is a small generic registry that builds modules from
// configuration. A module is selected by a type string and configured with a
// map of raw settings that its factory decodes into a typed struct.
//
//	reg := factory.NewRegistry[report.Sink]()
//	_ = reg.Register("csv", func(conf map[string]any) (report.Sink, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewCSVSink(c.Path), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "csv", Conf: map[string]any{"path": "load.csv"}})
package factory
