package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/flynn/noise"
)

// noiseOverhead is the Noise record's encryption overhead: 4-byte length
// prefix plus the 16-byte AES-GCM tag.
const noiseOverhead = 4 + 16

var defaultCipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherAESGCM, noise.HashSHA256)

var (
	// ErrHandshakeFailed is returned when the Noise handshake fails.
	ErrHandshakeFailed = errors.New("transport: noise handshake failed")
	// ErrNoiseInitFailed is returned when Noise state cannot be initialized.
	ErrNoiseInitFailed = errors.New("transport: noise init failed")
)

// secureSession wraps a net.Conn with a completed Noise NN handshake (no
// static keys, anonymous channel). §1 delegates transport security away
// from the core reactor; this is where that delegation lands.
type secureSession struct {
	conn net.Conn
	cs1  *noise.CipherState
	cs2  *noise.CipherState
	init bool
}

func newSecureSession(conn net.Conn, initiator bool) (*secureSession, error) {
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite: defaultCipherSuite,
		Pattern:     noise.HandshakeNN,
		Initiator:   initiator,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoiseInitFailed, err)
	}

	s := &secureSession{conn: conn, init: initiator}
	if initiator {
		msg, _, _, err := hs.WriteMessage(nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
		}
		if err := writeFrame(conn, msg); err != nil {
			return nil, err
		}
		reply, err := readFrame(conn)
		if err != nil {
			return nil, err
		}
		_, cs1, cs2, err := hs.ReadMessage(nil, reply)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
		}
		s.cs1, s.cs2 = cs1, cs2
		return s, nil
	}

	msg, err := readFrame(conn)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := hs.ReadMessage(nil, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	reply, cs1, cs2, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	if err := writeFrame(conn, reply); err != nil {
		return nil, err
	}
	s.cs1, s.cs2 = cs1, cs2
	return s, nil
}

func (s *secureSession) encrypt(plaintext []byte) ([]byte, error) {
	if s.init {
		return s.cs1.Encrypt(nil, nil, plaintext)
	}
	return s.cs2.Encrypt(nil, nil, plaintext)
}

func (s *secureSession) decrypt(ciphertext []byte) ([]byte, error) {
	if s.init {
		return s.cs2.Decrypt(nil, nil, ciphertext)
	}
	return s.cs1.Decrypt(nil, nil, ciphertext)
}

// Write seals plaintext and writes a length-prefixed record.
func (s *secureSession) Write(plaintext []byte) (int, error) {
	sealed, err := s.encrypt(plaintext)
	if err != nil {
		return 0, err
	}
	if err := writeFrame(s.conn, sealed); err != nil {
		return 0, err
	}
	return len(plaintext), nil
}

// Read blocks for the next record and returns its decrypted plaintext.
func (s *secureSession) Read() ([]byte, error) {
	sealed, err := readFrame(s.conn)
	if err != nil {
		return nil, err
	}
	return s.decrypt(sealed)
}

func writeFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > 16*1024*1024 {
		return nil, errors.New("transport: noise frame too large")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
