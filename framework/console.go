package framework

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

// Tag identifies the kind of a console line.
type Tag string

const (
	TagInfo    Tag = "INFO"
	TagError   Tag = "ERROR"
	TagDebug   Tag = "DEBUG"
	TagWarning Tag = "WARNING"
	TagCurl    Tag = "cURL"
)

var tagColors = map[Tag]color.Attribute{
	TagInfo:    color.FgGreen,
	TagError:   color.FgRed,
	TagDebug:   color.FgCyan,
	TagWarning: color.FgYellow,
	TagCurl:    color.FgBlue,
}

// Console writes tagged diagnostic lines such as "[INFO] message" to a Logger. Colors are a
// presentation detail; with colors disabled the output is plain text.
type Console struct {
	sink   Logger
	colors map[Tag]*color.Color
}

// NewConsole creates a Console that sends each formatted line to sink.
func NewConsole(sink Logger, useColor bool) *Console {
	if sink == nil {
		sink = NullLogger()
	}
	c := &Console{sink: sink, colors: make(map[Tag]*color.Color, len(tagColors))}
	for tag, attr := range tagColors {
		col := color.New(attr)
		if useColor {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
		c.colors[tag] = col
	}
	return c
}

// Line formats a message with its tag without printing it.
func (c *Console) Line(tag Tag, format string, args ...interface{}) string {
	text := fmt.Sprintf("[%s] %s", tag, fmt.Sprintf(format, args...))
	if col := c.colors[tag]; col != nil {
		return col.Sprint(text)
	}
	return text
}

func (c *Console) print(tag Tag, format string, args ...interface{}) {
	c.sink.Printf("%s", c.Line(tag, format, args...))
}

func (c *Console) Info(format string, args ...interface{})    { c.print(TagInfo, format, args...) }
func (c *Console) Error(format string, args ...interface{})   { c.print(TagError, format, args...) }
func (c *Console) Debug(format string, args ...interface{})   { c.print(TagDebug, format, args...) }
func (c *Console) Warning(format string, args ...interface{}) { c.print(TagWarning, format, args...) }

// Curl prints a replay command.
func (c *Console) Curl(command string) {
	if command == "" {
		return
	}
	c.print(TagCurl, "%s", command)
}

// Pretty prints a value as indented JSON with sorted object keys.
func (c *Console) Pretty(value interface{}) {
	c.sink.Printf("%s", PrettyJSON(value))
}

// PrettyJSON renders a value as JSON indented by four spaces, with object keys sorted at
// every level, including inside values that marshal themselves. A value that cannot be
// rendered as JSON falls back to its %v form.
func PrettyJSON(value interface{}) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	var generic interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return string(data)
	}
	data, err = json.MarshalIndent(generic, "", "    ")
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
