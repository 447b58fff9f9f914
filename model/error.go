package model

import (
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
)

const (
	ErrorParams       = 100010
	ErrorNewRepo      = 100012
	ErrorDB           = 100015
	ErrorAuthMissing  = 100020
	ErrorAuthExpired  = 100021
	ErrorAuthInvalid  = 100022
	ErrorUpstream     = 100030
	ErrorEmbedding    = 100031
	ErrorLLM          = 100032
	ErrorVectorIndex  = 100033
	ErrorBrokerDecode = 100034
)

var ErrorMessages = map[int]string{
	ErrorParams:       "tham số không hợp lệ",
	ErrorNewRepo:      "khởi tạo repository thất bại",
	ErrorDB:           "db error",
	ErrorAuthMissing:  "Authorization header missing",
	ErrorAuthExpired:  "Token has expired",
	ErrorAuthInvalid:  "Invalid token",
	ErrorUpstream:     "dịch vụ phụ thuộc không khả dụng",
	ErrorEmbedding:    "embedding error",
	ErrorLLM:          "llm error",
	ErrorVectorIndex:  "vector index error",
	ErrorBrokerDecode: "không đọc được thông điệp từ hàng đợi",
}

type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	InnerError error  `json:"inner_error"`
}

func (err Error) Error() string {
	return err.Message
}

func (err Error) String() string {
	return err.InnerError.Error()
}

func NewError(code int, innerError error) *Error {
	if innerError != nil {
		var re = regexp.MustCompile(`[\n\t]+`)
		innerErrorString := re.ReplaceAllString(fmt.Sprintf("%+v", innerError), " ")
		log.Errorf("NewError code:%d, message:%s, innerError:%+v\n", code, ErrorMessages[code], innerErrorString)
	}
	return &Error{
		Code:       code,
		Message:    ErrorMessages[code],
		InnerError: nil,
	}
}

func NewErrorWithMessage(code int, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		InnerError: nil,
	}
}
