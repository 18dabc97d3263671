// Package extract turns plate-like model elements into 2D plate geometry.
package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/platenest/internal/model"
)

// Element is one plate-like element as delivered by the model parser:
// world-space vertices in mm, optional triangle faces and its properties.
type Element struct {
	SourceID   string           `json:"source_id"`
	Name       string           `json:"name"`
	Vertices   []r3.Vec         `json:"vertices"`
	Faces      [][3]int         `json:"faces,omitempty"`
	Properties model.Properties `json:"properties,omitempty"`
}

// Input is the document read by the command line tools.
type Input struct {
	Elements  []Element         `json:"elements"`
	Fasteners []model.Fastener  `json:"fasteners,omitempty"`
	Stocks    []model.StockSize `json:"stocks,omitempty"`
}

// ReadInput decodes an Input document.
func ReadInput(r io.Reader) (Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Input{}, fmt.Errorf("failed to parse input: %w", err)
	}
	for i, el := range in.Elements {
		if el.SourceID == "" {
			return Input{}, fmt.Errorf("element %d has no source_id", i)
		}
	}
	return in, nil
}

// LoadInput reads an Input document from path.
func LoadInput(path string) (Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return ReadInput(f)
}
