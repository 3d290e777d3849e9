package emit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/sub2clash-go/internal/assemble"
	"github.com/John-Robertt/sub2clash-go/internal/model"
)

type EmitError struct {
	AppError model.AppError
	Cause    error
}

func (e *EmitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.AppError.Code, e.AppError.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.AppError.Code, e.AppError.Message, e.Cause)
}

func (e *EmitError) Unwrap() error { return e.Cause }

// Marshal serializes the assembled document as Clash YAML.
func Marshal(doc *assemble.Document) ([]byte, error) {
	if doc == nil {
		return nil, &EmitError{
			AppError: model.AppError{
				Code:    "INVALID_ARGUMENT",
				Message: "输出文档不能为空",
				Stage:   "emit",
			},
		}
	}
	out, err := yaml.Marshal(toClashDocument(doc))
	if err != nil {
		return nil, &EmitError{
			AppError: model.AppError{
				Code:    "MARSHAL_FAILED",
				Message: "YAML 序列化失败",
				Stage:   "emit",
			},
			Cause: err,
		}
	}
	return out, nil
}

// WriteFile serializes the document and writes it whole to outputPath. A
// write failure is reported distinctly from fetch/parse failures so the
// operator can tell "bad source" from "bad destination".
func WriteFile(doc *assemble.Document, outputPath string) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return &EmitError{
			AppError: model.AppError{
				Code:    "WRITE_FAILED",
				Message: "写入配置文件失败",
				Stage:   "emit",
				Snippet: outputPath,
			},
			Cause: err,
		}
	}
	return nil
}
