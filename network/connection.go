// network/connection.go
package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrShortPacket    = errors.New("packet shorter than its header")
	ErrPacketTooLarge = errors.New("packet body too large")
)

type Packet struct {
	MsgID  uint16
	Length uint32
	Data   []byte
}

// Decode unmarshals the JSON body into v.
func (p *Packet) Decode(v interface{}) error {
	if len(p.Data) == 0 {
		return fmt.Errorf("message %d: empty body", p.MsgID)
	}
	if err := json.Unmarshal(p.Data, v); err != nil {
		return fmt.Errorf("message %d: %w", p.MsgID, err)
	}
	return nil
}

type Connection interface {
	Send(msgID uint16, data []byte) error
	SendJSON(msgID uint16, v interface{}) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadPacket() (*Packet, error)
}

// Encode frames a body: 2-byte id, 4-byte length, body. Big endian.
func Encode(msgID uint16, data []byte) ([]byte, error) {
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(data))
	}
	packet := make([]byte, HeaderSize+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint32(packet[2:6], uint32(len(data)))
	copy(packet[HeaderSize:], data)
	return packet, nil
}

// Parse is the inverse of Encode. Trailing bytes past the declared length are
// ignored.
func Parse(data []byte) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, ErrShortPacket
	}
	msgID := binary.BigEndian.Uint16(data[0:2])
	length := binary.BigEndian.Uint32(data[2:6])
	if length > MaxBodySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, length)
	}
	if uint64(len(data)) < uint64(HeaderSize)+uint64(length) {
		return nil, ErrShortPacket
	}
	return &Packet{
		MsgID:  msgID,
		Length: length,
		Data:   data[HeaderSize : HeaderSize+int(length)],
	}, nil
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	conn.SetReadLimit(HeaderSize + MaxBodySize)
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	packet, err := Encode(msgID, data)
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.BinaryMessage, packet)
}

func (c *WSConnection) SendJSON(msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message %d: %w", msgID, err)
	}
	return c.Send(msgID, data)
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if c.heartbeat > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.heartbeat * 2))
	}
	return Parse(data)
}

// SetHeartbeat drops the connection when nothing arrives for two intervals.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
