package sdmx

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	jsoniter "github.com/json-iterator/go"
)

// codec sorts attribute keys and leaves HTML characters unescaped.
var codec = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// jsonNumber matches the JSON number grammar.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

type jsonDocument struct {
	Header jsonHeader   `json:"header"`
	Series []jsonSeries `json:"series"`
}

type jsonHeader struct {
	ID       string `json:"id"`
	Prepared string `json:"prepared"`
	Sender   string `json:"sender"`
}

type jsonSeries struct {
	Attributes   map[string]string `json:"attributes"`
	Observations []jsonObservation `json:"observations"`
}

type jsonObservation struct {
	Year  any `json:"year"`
	Value any `json:"value"`
}

// MarshalJSON renders the document with a four-space indent. Numeric years
// and values are written as JSON numbers, anything else as strings.
func MarshalJSON(doc *Document) ([]byte, error) {
	out := jsonDocument{
		Header: jsonHeader{
			ID:       doc.Header.ID,
			Prepared: doc.Header.Prepared,
			Sender:   doc.Header.Sender,
		},
		Series: make([]jsonSeries, 0, len(doc.Series)),
	}

	for _, s := range doc.Series {
		observations := make([]jsonObservation, 0, len(s.Observations))
		for _, observation := range s.Observations {
			observations = append(observations, jsonObservation{
				Year:  numberOrString(observation.Year),
				Value: numberOrString(observation.Value),
			})
		}
		out.Series = append(out.Series, jsonSeries{
			Attributes:   s.Attributes,
			Observations: observations,
		})
	}

	data, err := codec.MarshalIndent(out, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode SDMX JSON: %w", err)
	}
	return data, nil
}

// WriteJSON writes the JSON rendering of the document.
func WriteJSON(w io.Writer, doc *Document) error {
	data, err := MarshalJSON(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write SDMX JSON: %w", err)
	}
	return nil
}

func numberOrString(cell string) any {
	if jsonNumber.MatchString(cell) {
		return json.Number(cell)
	}
	return cell
}
