package jsonrpc

import "encoding/json"

const Version = "2.0"

// Error codes follow the JSON-RPC 2.0 reserved ranges, plus the ledger's own
// application range starting at -32000.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeLedgerError    = -32000
)

type Request struct {
	Id      int             `json:"id"`
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	Id      int         `json:"id"`
	Version string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

func UnmarshalRequest(b []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(b, &req)
	return req, err
}

func UnmarshalResponse(b []byte) (Response, error) {
	var resp Response
	err := json.Unmarshal(b, &resp)
	return resp, err
}

func MarshalRequest(r Request) []byte {
	req, _ := json.Marshal(r)
	return req
}

func MarshalResponse(r Response) []byte {
	resp, _ := json.Marshal(r)
	return resp
}

// DecodeParams 解析请求参数
func (r *Request) DecodeParams() (map[string]interface{}, error) {
	params := make(map[string]interface{})
	if len(r.Params) == 0 {
		return params, nil
	}
	err := json.Unmarshal(r.Params, &params)
	return params, err
}
