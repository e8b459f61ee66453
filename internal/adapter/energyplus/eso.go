package energyplus

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
)

// ESOFormat holds the layout constants of the EnergyPlus standard output
// (.eso) file. They track one engine output version; a format revision only
// needs a different ESOFormat.
type ESOFormat struct {
	// Sentinel terminates the data dictionary.
	Sentinel string
	// Preamble is the number of header lines before the first variable declaration.
	Preamble int
	// DataOffset is the distance from the sentinel to the first timestep marker.
	DataOffset int
	// Trailer is the number of non-data lines at the end of the file.
	Trailer int
	// FrequencySuffix is stripped from variable names.
	FrequencySuffix string
	// ValueField is the comma-separated field index holding a datum's value.
	ValueField int
}

// DefaultESOFormat returns the layout written by EnergyPlus 9.x:
// a version line and six standard report dictionary lines, the environment
// line between the dictionary and the first timestep, and a trailer of
// "End of Data", the record count and the empty string after the final newline.
func DefaultESOFormat() ESOFormat {
	return ESOFormat{
		Sentinel:        "End of Data Dictionary",
		Preamble:        7,
		DataOffset:      2,
		Trailer:         3,
		FrequencySuffix: " !Hourly",
		ValueField:      1,
	}
}

// ESOResult is the columnar content of an output stream.
type ESOResult struct {
	Names  []string
	Stride int // len(Names) + 1
	// Values holds every datum in timestep order, then declaration order.
	Values []float64
}

// Timesteps returns the number of reporting timesteps.
func (r ESOResult) Timesteps() int {
	if len(r.Names) == 0 {
		return 0
	}
	return len(r.Values) / len(r.Names)
}

// Column returns the values of the i-th declared variable.
func (r ESOResult) Column(i int) ([]float64, error) {
	v := len(r.Names)
	if i < 0 || i >= v {
		return nil, fmt.Errorf("column %d out of range, %d variables declared", i, v)
	}
	out := make([]float64, 0, r.Timesteps())
	for j := i; j < len(r.Values); j += v {
		out = append(out, r.Values[j])
	}
	return out, nil
}

// DictionaryEnd returns the index of the first sentinel line.
func DictionaryEnd(lines []string, f ESOFormat) (int, error) {
	for i, line := range lines {
		if line == f.Sentinel {
			return i, nil
		}
	}
	return 0, &domain.FormatError{Reason: fmt.Sprintf("missing %q line", f.Sentinel), Line: -1}
}

// VariableNames returns the names declared between the preamble and the
// dictionary end: the last comma-separated field of each line, without the
// reporting frequency suffix.
func VariableNames(lines []string, end int, f ESOFormat) ([]string, error) {
	if end < f.Preamble || end > len(lines) {
		return nil, &domain.FormatError{
			Reason: fmt.Sprintf("dictionary ends before the %d-line preamble", f.Preamble),
			Line:   end,
		}
	}
	names := make([]string, 0, end-f.Preamble)
	for _, line := range lines[f.Preamble:end] {
		field := line
		if i := strings.LastIndexByte(line, ','); i >= 0 {
			field = line[i+1:]
		}
		names = append(names, strings.TrimSuffix(field, f.FrequencySuffix))
	}
	return names, nil
}

// Values de-interleaves the data section into one flat sequence. Each
// timestep is a marker line followed by one datum line per variable, so the
// section must be an exact multiple of numVars+1 lines.
func Values(lines []string, end, numVars int, f ESOFormat) ([]float64, error) {
	if numVars <= 0 {
		return nil, &domain.FormatError{Reason: "no output variables declared", Line: end}
	}
	start := end + f.DataOffset
	stop := len(lines) - f.Trailer
	if start > stop {
		return nil, &domain.FormatError{
			Reason: fmt.Sprintf("data section is shorter than the %d-line offset and %d-line trailer", f.DataOffset, f.Trailer),
			Line:   start,
		}
	}

	stride := numVars + 1
	if n := stop - start; n%stride != 0 {
		return nil, &domain.FormatError{
			Reason: fmt.Sprintf("data section has %d lines, not a multiple of stride %d", n, stride),
			Line:   start,
		}
	}

	values := make([]float64, 0, (stop-start)/stride*numVars)
	for chunk := start; chunk < stop; chunk += stride {
		for i := chunk + 1; i < chunk+stride; i++ {
			v, err := datum(lines[i], i, f.ValueField)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}
	return values, nil
}

func datum(line string, idx, field int) (float64, error) {
	fields := strings.Split(line, ",")
	if field >= len(fields) {
		return 0, &domain.ParseError{Line: idx, Field: line, Err: fmt.Errorf("want at least %d fields, got %d", field+1, len(fields))}
	}
	raw := strings.TrimSpace(fields[field])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.ParseError{Line: idx, Field: raw, Err: err}
	}
	return v, nil
}

// Extract runs the full columnar extraction over an already split stream.
func Extract(lines []string, f ESOFormat) (ESOResult, error) {
	end, err := DictionaryEnd(lines, f)
	if err != nil {
		return ESOResult{}, err
	}
	names, err := VariableNames(lines, end, f)
	if err != nil {
		return ESOResult{}, err
	}
	values, err := Values(lines, end, len(names), f)
	if err != nil {
		return ESOResult{}, err
	}
	return ESOResult{Names: names, Stride: len(names) + 1, Values: values}, nil
}

// SplitLines splits raw output on newlines, keeping the empty string after a
// final newline (it is part of the trailer) and dropping carriage returns.
func SplitLines(data string) []string {
	lines := strings.Split(data, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ReadESO reads and extracts a whole output stream.
func ReadESO(r io.Reader, f ESOFormat) (ESOResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ESOResult{}, fmt.Errorf("read eso: %w", err)
	}
	return Extract(SplitLines(string(data)), f)
}
