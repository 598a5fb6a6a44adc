package clipboard

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Protocol commands.
const (
	CommandReadText  = "readText"
	CommandWriteText = "writeText"
)

// encodingBase64 marks a value that is not valid UTF-8 and travels base64
// encoded, so arbitrary bytes survive the JSON frame unchanged.
const encodingBase64 = "base64"

// Message types.
const (
	typeRequest  = "request"
	typeResponse = "response"
)

// request is a call from the isolated side.
type request struct {
	Seq     int64
	Command string
	Value   string
}

// response answers a request. Value is set for successful readText calls;
// Message is set on failure.
type response struct {
	Seq        int64
	RequestSeq int64
	Command    string
	Success    bool
	Value      string
	Message    string
}

// encodeRequest renders
//
//	{"seq":1,"type":"request","command":"writeText","arguments":{"value":"..."}}
func encodeRequest(r request) ([]byte, error) {
	b := []byte(`{}`)
	var err error
	if b, err = sjson.SetBytes(b, "seq", r.Seq); err != nil {
		return nil, err
	}
	if b, err = sjson.SetBytes(b, "type", typeRequest); err != nil {
		return nil, err
	}
	if b, err = sjson.SetBytes(b, "command", r.Command); err != nil {
		return nil, err
	}
	if r.Command == CommandWriteText {
		if b, err = setValue(b, "arguments", r.Value); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// encodeResponse renders
//
//	{"seq":2,"type":"response","request_seq":1,"command":"readText","success":true,"body":{"value":"..."}}
func encodeResponse(r response) ([]byte, error) {
	b := []byte(`{}`)
	var err error
	if b, err = sjson.SetBytes(b, "seq", r.Seq); err != nil {
		return nil, err
	}
	if b, err = sjson.SetBytes(b, "type", typeResponse); err != nil {
		return nil, err
	}
	if b, err = sjson.SetBytes(b, "request_seq", r.RequestSeq); err != nil {
		return nil, err
	}
	if b, err = sjson.SetBytes(b, "command", r.Command); err != nil {
		return nil, err
	}
	if b, err = sjson.SetBytes(b, "success", r.Success); err != nil {
		return nil, err
	}
	if r.Success && r.Command == CommandReadText {
		if b, err = setValue(b, "body", r.Value); err != nil {
			return nil, err
		}
	}
	if !r.Success {
		if b, err = sjson.SetBytes(b, "message", r.Message); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// setValue stores value under obj. Text that is not valid UTF-8 is written
// base64 encoded with obj.encoding set.
func setValue(b []byte, obj, value string) ([]byte, error) {
	if utf8.ValidString(value) {
		return sjson.SetBytes(b, obj+".value", value)
	}
	b, err := sjson.SetBytes(b, obj+".value", base64.StdEncoding.EncodeToString([]byte(value)))
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(b, obj+".encoding", encodingBase64)
}

// getValue reverses setValue.
func getValue(msg gjson.Result, obj string) (string, error) {
	value := msg.Get(obj + ".value").String()
	switch enc := msg.Get(obj + ".encoding").String(); enc {
	case "":
		return value, nil
	case encodingBase64:
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s.value: %v", ErrInvalidMessage, obj, err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", ErrInvalidMessage, enc)
	}
}

func parseMessage(b []byte, wantType string) (gjson.Result, error) {
	if !gjson.ValidBytes(b) {
		return gjson.Result{}, fmt.Errorf("%w: not JSON", ErrInvalidMessage)
	}
	msg := gjson.ParseBytes(b)
	if !msg.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: not an object", ErrInvalidMessage)
	}
	if t := msg.Get("type").String(); t != wantType {
		return gjson.Result{}, fmt.Errorf("%w: type %q, want %q", ErrInvalidMessage, t, wantType)
	}
	if !msg.Get("seq").Exists() {
		return gjson.Result{}, fmt.Errorf("%w: missing seq", ErrInvalidMessage)
	}
	return msg, nil
}

func decodeRequest(b []byte) (request, error) {
	msg, err := parseMessage(b, typeRequest)
	if err != nil {
		return request{}, err
	}
	req := request{
		Seq:     msg.Get("seq").Int(),
		Command: msg.Get("command").String(),
	}
	if req.Value, err = getValue(msg, "arguments"); err != nil {
		return request{}, err
	}
	return req, nil
}

func decodeResponse(b []byte) (response, error) {
	msg, err := parseMessage(b, typeResponse)
	if err != nil {
		return response{}, err
	}
	resp := response{
		Seq:        msg.Get("seq").Int(),
		RequestSeq: msg.Get("request_seq").Int(),
		Command:    msg.Get("command").String(),
		Success:    msg.Get("success").Bool(),
		Message:    msg.Get("message").String(),
	}
	if resp.Value, err = getValue(msg, "body"); err != nil {
		return response{}, err
	}
	return resp, nil
}
