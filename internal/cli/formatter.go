package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

var SupportedOutputFormats = []string{"table", "json", "yaml"}

//OutputFormatter renders rows as table or as list of objects (JSON/YAML) whose keys are the lower camel case headers
type OutputFormatter struct {
	header []string
	data   [][]interface{}
	format string
}

func NewOutputFormatter(format string) (*OutputFormatter, error) {
	if err := validateFormat(format); err != nil {
		return nil, err
	}
	return &OutputFormatter{format: format}, nil
}

func validateFormat(format string) error {
	for _, supportedFormat := range SupportedOutputFormats {
		if supportedFormat == format {
			return nil
		}
	}
	return fmt.Errorf("output format '%s' is not supported: please choose between '%s'",
		format, strings.Join(SupportedOutputFormats, "', '"))
}

func (of *OutputFormatter) Header(header ...string) error {
	for _, row := range of.data {
		if err := of.headerColumnCheck(len(row), len(header)); err != nil {
			return err
		}
	}
	of.header = header
	return nil
}

func (of *OutputFormatter) AddRow(data ...interface{}) error {
	if of.header != nil {
		if err := of.headerColumnCheck(len(data), len(of.header)); err != nil {
			return err
		}
	}
	of.data = append(of.data, data)
	return nil
}

func (of *OutputFormatter) headerColumnCheck(columnCnt, headerCnt int) error {
	if columnCnt != headerCnt {
		return fmt.Errorf("header count differs with column count: %d != %d", headerCnt, columnCnt)
	}
	return nil
}

func (of *OutputFormatter) Output(writer io.Writer) error {
	switch of.format {
	case "json":
		return of.marshal(writer, func(v interface{}) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		})
	case "yaml":
		return of.marshal(writer, marshalYAML)
	default:
		return of.tableOutput(writer)
	}
}

func (of *OutputFormatter) marshal(writer io.Writer, marshalFct func(interface{}) ([]byte, error)) error {
	data, err := of.serializeableData()
	if err != nil {
		return err
	}
	out, err := marshalFct(data)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(string(out), "\n") {
		out = append(out, '\n')
	}
	_, err = writer.Write(out)
	return err
}

func (of *OutputFormatter) tableOutput(writer io.Writer) error {
	rows := make([][]string, 0, len(of.data))
	for _, dataRow := range of.data {
		row := make([]string, 0, len(dataRow))
		for _, cell := range dataRow {
			value, err := cellString(cell)
			if err != nil {
				return err
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}
	table := tablewriter.NewWriter(writer)
	table.SetHeader(of.header)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.AppendBulk(rows)
	table.Render()
	return nil
}

func marshalYAML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//cellString prints scalars as they are and nested values as compact JSON
func cellString(cell interface{}) (string, error) {
	switch value := cell.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case fmt.Stringer:
		return value.String(), nil
	case bool, int, int64, uint, float64:
		return fmt.Sprint(value), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func (of *OutputFormatter) serializeableData() ([]map[string]interface{}, error) {
	if len(of.header) == 0 {
		return nil, fmt.Errorf("no headers defined: cannot convert data to map")
	}
	data := []map[string]interface{}{}
	for _, dataRow := range of.data {
		dataTuple := make(map[string]interface{}, len(of.header))
		for idxCol, hdr := range of.header {
			dataTuple[strcase.ToLowerCamel(hdr)] = dataRow[idxCol]
		}
		data = append(data, dataTuple)
	}
	return data, nil
}
