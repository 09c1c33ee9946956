package osmapi

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmgeojson"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

// Converter implements ports.GeometryConverter with osmgeojson.
type Converter struct {
	opts []osmgeojson.Option
}

// NewConverter returns a converter that drops element metadata (user,
// changeset, timestamp) from feature properties.
func NewConverter() *Converter {
	return &Converter{opts: []osmgeojson.Option{osmgeojson.NoMeta(true)}}
}

// Convert decodes an OSM XML or JSON document and converts its nodes, ways
// and relations into a feature collection. Empty input yields (nil, nil).
func (c *Converter) Convert(raw domain.RawMapData) (fc *domain.GeometryCollection, err error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			fc = nil
			err = &domain.ConversionError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	o := &osm.OSM{}
	if data[0] == '{' {
		err = json.Unmarshal(data, o)
	} else {
		err = xml.Unmarshal(data, o)
	}
	if err != nil {
		return nil, &domain.ConversionError{Err: fmt.Errorf("decode osm: %w", err)}
	}

	fc, err = osmgeojson.Convert(o, c.opts...)
	if err != nil {
		return nil, &domain.ConversionError{Err: err}
	}
	return fc, nil
}
