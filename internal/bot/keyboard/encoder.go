package keyboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Callback actions carried in inline button payloads.
const (
	ActionConfirmSave    = "confirmSave"
	ActionConfirmDiscard = "confirmDiscard"
	ActionViewDetail     = "viewDetail"
	ActionGoBack         = "goBack"
	ActionTemplateMenu   = "templateMenu"
	ActionSelectTemplate = "selectTemplate"
)

const (
	argSeparator           = ":"
	ownerSeparator         = "|"
	CallbackDataLimitBytes = 64
)

var ErrMalformedPayload = errors.New("malformed callback payload")

// Payload is the decoded form of a callback data string. Wire shapes:
//
//	confirmSave|<ownerID>
//	confirmDiscard|<ownerID>
//	viewDetail:<entityID>|<ownerID>
//	goBack|<ownerID>
//	templateMenu:<category>
//	selectTemplate:<category>_<index>
//
// OwnerID is zero for shapes that carry no delegated authority; for those
// the ownership registry remains the only authorization line.
type Payload struct {
	Action  string
	Arg     string
	OwnerID int64
}

// HasOwner reports whether the payload embeds an authorizing user id.
func (p Payload) HasOwner() bool {
	return p.OwnerID != 0
}

// Encode renders the payload into callback data, enforcing Telegram's
// 64-byte callback data limit.
func Encode(p Payload) (string, error) {
	if p.Action == "" {
		return "", ErrMalformedPayload
	}

	data := p.Action
	if p.Arg != "" {
		data += argSeparator + p.Arg
	}
	if p.OwnerID != 0 {
		data += ownerSeparator + strconv.FormatInt(p.OwnerID, 10)
	}

	if len(data) > CallbackDataLimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", CallbackDataLimitBytes, len(data))
	}

	return data, nil
}

// Decode parses callback data back into a Payload. Any malformed input
// yields ErrMalformedPayload; callers answer those with a generic notice and
// never propagate them.
func Decode(data string) (Payload, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Payload{}, ErrMalformedPayload
	}

	var p Payload

	if idx := strings.LastIndex(data, ownerSeparator); idx != -1 {
		ownerRaw := data[idx+len(ownerSeparator):]
		ownerID, err := strconv.ParseInt(ownerRaw, 10, 64)
		if err != nil || ownerID <= 0 {
			return Payload{}, ErrMalformedPayload
		}

		p.OwnerID = ownerID
		data = data[:idx]
	}

	if idx := strings.Index(data, argSeparator); idx != -1 {
		p.Action = data[:idx]
		p.Arg = data[idx+len(argSeparator):]
	} else {
		p.Action = data
	}

	if p.Action == "" {
		return Payload{}, ErrMalformedPayload
	}

	return p, nil
}

// SplitTemplateArg parses the "<category>_<index>" argument of a
// selectTemplate payload.
func SplitTemplateArg(arg string) (category string, index int, err error) {
	idx := strings.LastIndex(arg, "_")
	if idx <= 0 || idx == len(arg)-1 {
		return "", 0, ErrMalformedPayload
	}

	index, convErr := strconv.Atoi(arg[idx+1:])
	if convErr != nil || index <= 0 {
		return "", 0, ErrMalformedPayload
	}

	return arg[:idx], index, nil
}
