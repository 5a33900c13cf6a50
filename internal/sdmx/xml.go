// =============================================================================
// Indicator Tidy - SDMX-ML Writer
// =============================================================================
//
// This module renders a document as an SDMX-ML generic data message.
//
// XML STRUCTURE:
//
//   <message:GenericData ...namespaces>
//     <message:Header>
//       <message:ID>1-2-1</message:ID>
//       <message:Test>false</message:Test>
//       <message:Prepared>2018-02-01</message:Prepared>
//       <message:Sender id="indicator-tidy"/>
//     </message:Header>
//     <message:DataSet>
//       <generic:Series>
//         <generic:SeriesKey>
//           <generic:Value id="SEX" value="F"/>      <!-- dimensions -->
//         </generic:SeriesKey>
//         <generic:Attributes>
//           <generic:Value id="FREQ" value="A"/>     <!-- fixed attributes -->
//         </generic:Attributes>
//         <generic:Obs>
//           <generic:ObsDimension value="2010"/>
//           <generic:ObsValue value="40"/>
//         </generic:Obs>
//       </generic:Series>
//     </message:DataSet>
//   </message:GenericData>
//
// =============================================================================

package sdmx

import (
	"bytes"
	"fmt"
	"io"
)

// SDMX-ML 2.1 namespaces.
const (
	namespaceMessage = "http://www.sdmx.org/resources/sdmxml/schemas/v2_1/message"
	namespaceGeneric = "http://www.sdmx.org/resources/sdmxml/schemas/v2_1/data/generic"
	namespaceCommon  = "http://www.sdmx.org/resources/sdmxml/schemas/v2_1/common"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// XMLOptions contains options for XML generation.
type XMLOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool
}

// DefaultXMLOptions returns the default generation options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// MarshalXML renders the document with the default options.
func MarshalXML(doc *Document) []byte {
	return MarshalXMLWithOptions(doc, DefaultXMLOptions())
}

// MarshalXMLWithOptions renders the document as SDMX-ML.
func MarshalXMLWithOptions(doc *Document, options XMLOptions) []byte {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	}

	writeElement(&buffer, buildMessage(doc), options.Indent, 0)

	return buffer.Bytes()
}

// WriteXML writes the SDMX-ML rendering of the document.
func WriteXML(w io.Writer, doc *Document) error {
	if _, err := w.Write(MarshalXML(doc)); err != nil {
		return fmt.Errorf("failed to write SDMX XML: %w", err)
	}
	return nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// element is a generic XML element.
type element struct {
	Name       string
	Attributes []attribute
	Value      string
	Children   []element
}

type attribute struct {
	Name  string
	Value string
}

func buildMessage(doc *Document) element {
	dataSet := element{Name: "message:DataSet"}
	for _, s := range doc.Series {
		seriesKey := element{Name: "generic:SeriesKey"}
		for _, dimension := range s.Dimensions {
			seriesKey.Children = append(seriesKey.Children, valueElement(dimension.Name, dimension.Value))
		}

		attributes := element{Name: "generic:Attributes"}
		for _, name := range fixedNames(doc, s) {
			attributes.Children = append(attributes.Children, valueElement(name, doc.Fixed[name]))
		}

		seriesElement := element{
			Name:     "generic:Series",
			Children: []element{seriesKey, attributes},
		}
		for _, observation := range s.Observations {
			seriesElement.Children = append(seriesElement.Children, element{
				Name: "generic:Obs",
				Children: []element{
					{Name: "generic:ObsDimension", Attributes: []attribute{{"value", observation.Year}}},
					{Name: "generic:ObsValue", Attributes: []attribute{{"value", observation.Value}}},
				},
			})
		}

		dataSet.Children = append(dataSet.Children, seriesElement)
	}

	return element{
		Name: "message:GenericData",
		Attributes: []attribute{
			{"xmlns:message", namespaceMessage},
			{"xmlns:generic", namespaceGeneric},
			{"xmlns:common", namespaceCommon},
		},
		Children: []element{
			{
				Name: "message:Header",
				Children: []element{
					{Name: "message:ID", Value: doc.Header.ID},
					{Name: "message:Test", Value: "false"},
					{Name: "message:Prepared", Value: doc.Header.Prepared},
					{Name: "message:Sender", Attributes: []attribute{{"id", doc.Header.Sender}}},
				},
			},
			dataSet,
		},
	}
}

// valueElement creates a generic:Value element.
func valueElement(id, value string) element {
	return element{
		Name:       "generic:Value",
		Attributes: []attribute{{"id", id}, {"value", value}},
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, e element, indent string, level int) {
	// Write indentation.
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	// Write opening tag.
	buffer.WriteString("<")
	buffer.WriteString(e.Name)

	// Write attributes.
	for _, attr := range e.Attributes {
		fmt.Fprintf(buffer, " %s=\"%s\"", attr.Name, escapeXML(attr.Value))
	}

	// Check if element has children or value.
	if len(e.Children) == 0 && e.Value == "" {
		// Self-closing tag.
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	// Write value or children.
	if e.Value != "" {
		buffer.WriteString(escapeXML(e.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range e.Children {
			writeElement(buffer, child, indent, level+1)
		}

		// Write indentation for closing tag.
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	// Write closing tag.
	buffer.WriteString("</")
	buffer.WriteString(e.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
