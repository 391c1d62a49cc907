// Package record renders metric samples as single-line markup records and
// reads them back.
//
// A record looks like
//
//	<metrica nombre="Latency" fecha="2024-05-01 13:45:10">23.4</metrica>
//
// with an optional comentario attribute after fecha. Records are
// concatenated one per line without an enclosing root element.
package record

import (
	"math"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/qosprobe/internal/errors"
)

// TimeLayout is the fecha attribute layout, local time.
const TimeLayout = "2006-01-02 15:04:05"

const (
	openPrefix   = `<metrica nombre="`
	dateAttr     = `" fecha="`
	commentAttr  = `" comentario="`
	openSuffix   = `">`
	closeElement = `</metrica>`
)

// MetricRecord is one finalized metric sample.
type MetricRecord struct {
	Name      string
	Timestamp time.Time
	Value     string
	Comment   string
}

// New stamps a record with the current local time.
func New(name, value, comment string) MetricRecord {
	return MetricRecord{
		Name:      name,
		Timestamp: time.Now(),
		Value:     value,
		Comment:   comment,
	}
}

// Format renders r without escaping, byte-compatible with existing logs.
func Format(r MetricRecord) string {
	return format(r, false)
}

// FormatEscaped renders r with markup-reserved characters escaped in every
// field.
func FormatEscaped(r MetricRecord) string {
	return format(r, true)
}

func format(r MetricRecord, escape bool) string {
	name, value, comment := r.Name, r.Value, r.Comment
	if escape {
		name, value, comment = escaper.Replace(name), escaper.Replace(value), escaper.Replace(comment)
	}

	var b strings.Builder
	b.Grow(len(openPrefix) + len(name) + len(dateAttr) + len(TimeLayout) +
		len(commentAttr) + len(comment) + len(openSuffix) + len(value) + len(closeElement))

	b.WriteString(openPrefix)
	b.WriteString(name)
	b.WriteString(dateAttr)
	b.WriteString(r.Timestamp.Local().Format(TimeLayout))
	if comment != "" {
		b.WriteString(commentAttr)
		b.WriteString(comment)
	}
	b.WriteString(openSuffix)
	b.WriteString(value)
	b.WriteString(closeElement)

	return b.String()
}

var (
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	unescaper = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

// Parse splits one formatted line back into its fields. Unescaped values
// containing the delimiter tokens themselves cannot be recovered; Parse is
// meant for records whose fields do not contain quotes or markup.
func Parse(line string) (MetricRecord, error) {
	return parse(line, false)
}

// ParseEscaped is Parse for lines produced by FormatEscaped.
func ParseEscaped(line string) (MetricRecord, error) {
	return parse(line, true)
}

func parse(line string, escaped bool) (MetricRecord, error) {
	errFactory := errors.New()
	line = strings.TrimRight(line, "\r\n")

	if !strings.HasPrefix(line, openPrefix) || !strings.HasSuffix(line, closeElement) {
		return MetricRecord{}, errFactory.WithData(ErrMalformedRecord, line)
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(line, openPrefix), closeElement)

	name, rest, ok := strings.Cut(rest, dateAttr)
	if !ok {
		return MetricRecord{}, errFactory.WithData(ErrMalformedRecord, line)
	}

	if len(rest) < len(TimeLayout) {
		return MetricRecord{}, errFactory.WithData(ErrMalformedRecord, line)
	}
	ts, err := time.ParseInLocation(TimeLayout, rest[:len(TimeLayout)], time.Local)
	if err != nil {
		return MetricRecord{}, errFactory.Wrap(ErrMalformedRecord, err)
	}
	rest = rest[len(TimeLayout):]

	var comment string
	if strings.HasPrefix(rest, commentAttr) {
		rest = strings.TrimPrefix(rest, commentAttr)
		comment, rest, ok = strings.Cut(rest, openSuffix)
	} else {
		rest, ok = strings.CutPrefix(rest, openSuffix)
	}
	if !ok {
		return MetricRecord{}, errFactory.WithData(ErrMalformedRecord, line)
	}

	r := MetricRecord{Name: name, Timestamp: ts, Value: rest, Comment: comment}
	if escaped {
		r.Name = unescaper.Replace(r.Name)
		r.Value = unescaper.Replace(r.Value)
		r.Comment = unescaper.Replace(r.Comment)
	}

	return r, nil
}

// FormatFloat renders v with the shortest round-trip digits, keeping ".0"
// on integral values.
func FormatFloat(v float64) string {
	return formatFloat(v, 64)
}

// FormatFloat32 renders a single-precision reading such as a sensor value.
func FormatFloat32(v float32) string {
	return formatFloat(float64(v), 32)
}

func formatFloat(v float64, bitSize int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}

	s := strconv.FormatFloat(v, 'f', -1, bitSize)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}

	return s
}

// FormatInt renders an integer value.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatBool renders a boolean value.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}
