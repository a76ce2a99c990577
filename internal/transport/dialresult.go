package transport

import "fmt"

// DialResultCode is a portable classification of the outcome of a dial.
// The values follow Linux errno numbers where one exists.
type DialResultCode uint8

const (
	DialResultCodeSuccess DialResultCode = 0

	DialResultCodeEACCES       DialResultCode = 13
	DialResultCodeENETDOWN     DialResultCode = 100
	DialResultCodeENETUNREACH  DialResultCode = 101
	DialResultCodeENETRESET    DialResultCode = 102
	DialResultCodeECONNABORTED DialResultCode = 103
	DialResultCodeECONNRESET   DialResultCode = 104
	DialResultCodeETIMEDOUT    DialResultCode = 110
	DialResultCodeECONNREFUSED DialResultCode = 111
	DialResultCodeEHOSTDOWN    DialResultCode = 112
	DialResultCodeEHOSTUNREACH DialResultCode = 113

	DialResultCodeErrDomainNameLookup DialResultCode = 254
	DialResultCodeErrOther            DialResultCode = 255
)

// DialResultCodeFromError classifies err, which may be nil for success.
func DialResultCodeFromError(err error) DialResultCode {
	return dialResultCodeFromError(err)
}

func (c DialResultCode) String() string {
	switch c {
	case DialResultCodeSuccess:
		return "success"
	case DialResultCodeEACCES:
		return "EACCES"
	case DialResultCodeENETDOWN:
		return "ENETDOWN"
	case DialResultCodeENETUNREACH:
		return "ENETUNREACH"
	case DialResultCodeENETRESET:
		return "ENETRESET"
	case DialResultCodeECONNABORTED:
		return "ECONNABORTED"
	case DialResultCodeECONNRESET:
		return "ECONNRESET"
	case DialResultCodeETIMEDOUT:
		return "ETIMEDOUT"
	case DialResultCodeECONNREFUSED:
		return "ECONNREFUSED"
	case DialResultCodeEHOSTDOWN:
		return "EHOSTDOWN"
	case DialResultCodeEHOSTUNREACH:
		return "EHOSTUNREACH"
	case DialResultCodeErrDomainNameLookup:
		return "domain name lookup failed"
	case DialResultCodeErrOther:
		return "other error"
	default:
		return fmt.Sprintf("unknown dial result code: %d", uint8(c))
	}
}
