package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// HeaderSize is the size, in bytes, of the fixed fields preceding the
// optional credentials and the payload: cmd(1) + flags(1) + correlation(16).
const HeaderSize = 1 + 1 + 16

const flagCredentialsPresent byte = 0x01

// Credentials is an optional username/password pair attached to a Package
// when the server requires per-request authentication.
type Credentials struct {
	Username string
	Password string
}

// Package is the unit of wire traffic exchanged with an EventStore node.
type Package struct {
	Cmd         Command
	Correlation uuid.UUID
	Payload     []byte
	Credentials *Credentials
}

// New builds a Package with a fresh correlation id already set by the caller.
func New(cmd Command, correlation uuid.UUID, payload []byte) Package {
	return Package{Cmd: cmd, Correlation: correlation, Payload: payload}
}

// WithCredentials returns a copy of the package carrying the given credentials.
func (p Package) WithCredentials(c Credentials) Package {
	p.Credentials = &c
	return p
}

var (
	// ErrShortPackage is returned when a buffer is too small to contain a full package.
	ErrShortPackage = errors.New("wire: package too short")
	// ErrBadCredentials is returned when the credentials length prefixes overrun the buffer.
	ErrBadCredentials = errors.New("wire: malformed credentials")
)

// Encode serializes a Package into the §6 wire format:
//
//	[length u32 LE][cmd u8][flags u8][correlation 16B BE]
//	[if flags&1: userLen u8, user, passLen u8, pass][payload]
func Encode(p Package) []byte {
	var body bytes.Buffer
	body.WriteByte(byte(p.Cmd))

	flags := byte(0)
	if p.Credentials != nil {
		flags |= flagCredentialsPresent
	}
	body.WriteByte(flags)

	corr := p.Correlation
	body.Write(corr[:])

	if p.Credentials != nil {
		writeShortString(&body, p.Credentials.Username)
		writeShortString(&body, p.Credentials.Password)
	}
	body.Write(p.Payload)

	out := make([]byte, 4+body.Len())
	binary.LittleEndian.PutUint32(out[:4], uint32(body.Len()))
	copy(out[4:], body.Bytes())
	return out
}

func writeShortString(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(len(s)))
	buf.WriteString(s)
}

// Decode parses a single framed Package from data, which must contain
// exactly the length-prefixed body (the framing collaborator is responsible
// for slicing one frame's worth of bytes off the socket stream).
func Decode(data []byte) (Package, error) {
	if len(data) < 4 {
		return Package{}, ErrShortPackage
	}
	n := binary.LittleEndian.Uint32(data[:4])
	rest := data[4:]
	if uint32(len(rest)) < n {
		return Package{}, ErrShortPackage
	}
	rest = rest[:n]

	if len(rest) < HeaderSize {
		return Package{}, ErrShortPackage
	}

	cmd := Command(rest[0])
	flags := rest[1]
	var corr uuid.UUID
	copy(corr[:], rest[2:18])
	rest = rest[18:]

	var creds *Credentials
	if flags&flagCredentialsPresent != 0 {
		user, tail, err := readShortString(rest)
		if err != nil {
			return Package{}, err
		}
		pass, tail2, err := readShortString(tail)
		if err != nil {
			return Package{}, err
		}
		creds = &Credentials{Username: user, Password: pass}
		rest = tail2
	}

	return Package{Cmd: cmd, Correlation: corr, Payload: rest, Credentials: creds}, nil
}

func readShortString(data []byte) (string, []byte, error) {
	if len(data) < 1 {
		return "", nil, ErrBadCredentials
	}
	n := int(data[0])
	data = data[1:]
	if len(data) < n {
		return "", nil, ErrBadCredentials
	}
	return string(data[:n]), data[n:], nil
}

// FrameLen returns the total on-wire size Encode would produce, without allocating.
func FrameLen(p Package) int {
	n := 4 + HeaderSize + len(p.Payload)
	if p.Credentials != nil {
		n += 1 + len(p.Credentials.Username) + 1 + len(p.Credentials.Password)
	}
	return n
}

func (p Package) String() string {
	return fmt.Sprintf("Package{%s %s %dB}", p.Cmd, p.Correlation, len(p.Payload))
}
