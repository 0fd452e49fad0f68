package wire

import (
	"encoding/binary"
	"errors"
)

// EndPoint is a (host, port) pair used by the connect effect.
type EndPoint struct {
	Host string
	Port uint16
}

func (e EndPoint) String() string {
	return e.Host + ":" + portString(e.Port)
}

func portString(p uint16) string {
	if p == 0 {
		return "0"
	}
	buf := [5]byte{}
	i := len(buf)
	for p > 0 {
		i--
		buf[i] = byte('0' + p%10)
		p /= 10
	}
	return string(buf[i:])
}

// NodeEndPoints is the master-redirection payload carried by a NotHandled
// package whose reason is NotMaster: the endpoint the driver should
// reconnect to, plus an optional secure variant.
type NodeEndPoints struct {
	TCP    EndPoint
	Secure *EndPoint
}

// ErrMalformedNotHandled is returned when a NotHandled payload cannot be
// decoded. Per §7, malformed NotHandled payloads are treated as the
// generic retry branch by the caller, not as a hard failure.
var ErrMalformedNotHandled = errors.New("wire: malformed NotHandled payload")

// NotHandledInfo is the decoded body of a NotHandled package.
type NotHandledInfo struct {
	Reason NotHandledReason
	Node   *NodeEndPoints // set only when Reason == NotMaster
}

// DecodeNotHandled parses a NotHandled payload:
//
//	[reason u8][if reason==NotMaster: host-len u16 LE, host, port u16 LE, hasSecure u8, (secure endpoint if hasSecure)]
func DecodeNotHandled(payload []byte) (NotHandledInfo, error) {
	if len(payload) < 1 {
		return NotHandledInfo{}, ErrMalformedNotHandled
	}
	reason := NotHandledReason(payload[0])
	if reason != NotMaster {
		return NotHandledInfo{Reason: reason}, nil
	}

	rest := payload[1:]
	ep, rest, err := decodeEndPoint(rest)
	if err != nil {
		return NotHandledInfo{}, err
	}
	node := &NodeEndPoints{TCP: ep}

	if len(rest) >= 1 && rest[0] == 1 {
		sep, _, err := decodeEndPoint(rest[1:])
		if err != nil {
			return NotHandledInfo{}, err
		}
		node.Secure = &sep
	}

	return NotHandledInfo{Reason: NotMaster, Node: node}, nil
}

func decodeEndPoint(data []byte) (EndPoint, []byte, error) {
	if len(data) < 2 {
		return EndPoint{}, nil, ErrMalformedNotHandled
	}
	hostLen := int(binary.LittleEndian.Uint16(data[:2]))
	data = data[2:]
	if len(data) < hostLen+2 {
		return EndPoint{}, nil, ErrMalformedNotHandled
	}
	host := string(data[:hostLen])
	data = data[hostLen:]
	port := binary.LittleEndian.Uint16(data[:2])
	return EndPoint{Host: host, Port: port}, data[2:], nil
}

// EncodeNotHandled is the inverse of DecodeNotHandled, used by tests and by
// any in-process fake server.
func EncodeNotHandled(info NotHandledInfo) []byte {
	out := []byte{byte(info.Reason)}
	if info.Reason != NotMaster || info.Node == nil {
		return out
	}
	out = append(out, encodeEndPoint(info.Node.TCP)...)
	if info.Node.Secure != nil {
		out = append(out, 1)
		out = append(out, encodeEndPoint(*info.Node.Secure)...)
	} else {
		out = append(out, 0)
	}
	return out
}

func encodeEndPoint(e EndPoint) []byte {
	out := make([]byte, 2+len(e.Host)+2)
	binary.LittleEndian.PutUint16(out[:2], uint16(len(e.Host)))
	copy(out[2:], e.Host)
	binary.LittleEndian.PutUint16(out[2+len(e.Host):], e.Port)
	return out
}
