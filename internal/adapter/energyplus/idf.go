package energyplus

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Field is one value of an IDF object with its descriptive comment.
type Field struct {
	Value   string
	Comment string
}

// Object is an IDF class instance.
type Object struct {
	Class  string
	Fields []Field
}

// Model is an ordered list of IDF objects.
type Model struct {
	Objects []Object
}

// Add appends an object and returns the model for chaining.
func (m *Model) Add(class string, fields ...Field) *Model {
	m.Objects = append(m.Objects, Object{Class: class, Fields: fields})
	return m
}

// Find returns every object of the given class.
func (m *Model) Find(class string) []Object {
	var out []Object
	for _, o := range m.Objects {
		if strings.EqualFold(o.Class, class) {
			out = append(out, o)
		}
	}
	return out
}

// WriteTo writes the model in IDF text syntax.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	for _, o := range m.Objects {
		writeObject(bw, o)
	}
	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("write idf: %w", err)
	}
	return cw.n, nil
}

// String renders the model as IDF text.
func (m *Model) String() string {
	var b strings.Builder
	m.WriteTo(&b) //nolint:errcheck // strings.Builder never fails
	return b.String()
}

func writeObject(w *bufio.Writer, o Object) {
	if len(o.Fields) == 0 {
		fmt.Fprintf(w, "%s;\n\n", o.Class)
		return
	}
	fmt.Fprintf(w, "%s,\n", o.Class)
	for i, f := range o.Fields {
		sep := ","
		if i == len(o.Fields)-1 {
			sep = ";"
		}
		value := "    " + f.Value + sep
		if f.Comment == "" {
			fmt.Fprintln(w, value)
			continue
		}
		fmt.Fprintf(w, "%-30s!- %s\n", value, f.Comment)
	}
	w.WriteString("\n")
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// S is a string field.
func S(value, comment string) Field { return Field{Value: value, Comment: comment} }

// N is a numeric field in shortest round-trip form.
func N(value float64, comment string) Field {
	return Field{Value: strconv.FormatFloat(value, 'g', -1, 64), Comment: comment}
}

// Vertex is a point in model coordinates (m).
type Vertex [3]float64

// vertexFields expands a polygon into X, Y, Z coordinate fields.
func vertexFields(vs []Vertex) []Field {
	out := make([]Field, 0, 3*len(vs))
	for i, v := range vs {
		n := i + 1
		out = append(out,
			N(v[0], fmt.Sprintf("Vertex %d X-coordinate {m}", n)),
			N(v[1], fmt.Sprintf("Vertex %d Y-coordinate {m}", n)),
			N(v[2], fmt.Sprintf("Vertex %d Z-coordinate {m}", n)),
		)
	}
	return out
}
