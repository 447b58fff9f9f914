package projectlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultTimestampFormat = time.RFC3339
	FieldKeyMsg            = "msg"
	FieldKeyLevel          = "level"
	FieldKeyTime           = "time"
	FieldKeyFunc           = "func"
	FieldKeyFile           = "file"
	FieldModule            = "module"
)

// LogFormat 固定字段顺序的日志结构
type LogFormat struct {
	Time     interface{} `json:"time,omitempty"`
	Level    interface{} `json:"level,omitempty"`
	Module   interface{} `json:"module,omitempty"`
	Msg      interface{} `json:"msg,omitempty"`
	Function interface{} `json:"func,omitempty"`
	File     interface{} `json:"file,omitempty"`
	Fields   interface{} `json:"fields,omitempty"`
}

// JSONFormatter 项目统一的 JSON 日志格式
type JSONFormatter struct {
	TimestampFormat  string
	PrettyPrint      bool
	CallerPrettyfier func(*runtime.Frame) (function string, file string)
}

func (f *JSONFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = defaultTimestampFormat
	}

	logFormat := &LogFormat{
		Time:  entry.Time.Format(timestampFormat),
		Level: entry.Level.String(),
		Msg:   entry.Message,
	}

	if entry.HasCaller() {
		funcVal := entry.Caller.Function
		fileVal := fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)
		if f.CallerPrettyfier != nil {
			funcVal, fileVal = f.CallerPrettyfier(entry.Caller)
		}
		logFormat.Function = funcVal
		logFormat.File = fileVal
	}

	if len(entry.Data) > 0 {
		fields := make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			switch v := v.(type) {
			case error:
				// 避免 error 序列化成 {}
				fields[k] = v.Error()
			default:
				fields[k] = v
			}
		}
		if m, ok := fields[FieldModule]; ok {
			logFormat.Module = m
			delete(fields, FieldModule)
		}
		if len(fields) > 0 {
			logFormat.Fields = fields
		}
	}

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	encoder := json.NewEncoder(b)
	if f.PrettyPrint {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(logFormat); err != nil {
		return nil, fmt.Errorf("failed to marshal fields to JSON, %v", err)
	}

	return b.Bytes(), nil
}
