// Package wire defines the binary frame format for streaming host
// operations to a remote render target and receiving events back.
//
// Frames are varint-based: a frame type byte, a sequence number, then a
// counted list of operations or one event. Node identity crosses the wire
// as uint64 ids assigned by the sender.
package wire

import (
	"errors"
	"fmt"
)

var (
	ErrShortBuffer    = errors.New("wire: buffer too short")
	ErrVarintOverflow = errors.New("wire: varint overflow")
)

// Frame type bytes.
const (
	FrameOps   byte = 0x01 // server -> target: batch of operations
	FrameEvent byte = 0x02 // target -> server: one event
	FrameAck   byte = 0x03 // target -> server: sequence acknowledgement
)

// OpCode identifies one primitive target operation.
type OpCode uint8

const (
	OpCreateElement OpCode = 0x01
	OpCreateText    OpCode = 0x02
	OpCreateComment OpCode = 0x03
	OpSetText       OpCode = 0x04
	OpInsertChild   OpCode = 0x05
	OpRemoveChild   OpCode = 0x06
	OpMoveChild     OpCode = 0x07
	OpSetAttribute  OpCode = 0x10
	OpRemoveAttr    OpCode = 0x11
	OpSetData       OpCode = 0x12
	OpClearData     OpCode = 0x13
	OpSetStyle      OpCode = 0x14
	OpRemoveStyle   OpCode = 0x15
	OpSetClass      OpCode = 0x16
	OpAddListener   OpCode = 0x20
	OpRemoveListen  OpCode = 0x21
	OpSetProperty   OpCode = 0x30
	OpDeleteProp    OpCode = 0x31
)

func (op OpCode) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpCreateComment:
		return "CreateComment"
	case OpSetText:
		return "SetText"
	case OpInsertChild:
		return "InsertChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpMoveChild:
		return "MoveChild"
	case OpSetAttribute:
		return "SetAttribute"
	case OpRemoveAttr:
		return "RemoveAttribute"
	case OpSetData:
		return "SetData"
	case OpClearData:
		return "ClearData"
	case OpSetStyle:
		return "SetStyle"
	case OpRemoveStyle:
		return "RemoveStyle"
	case OpSetClass:
		return "SetClass"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListen:
		return "RemoveListener"
	case OpSetProperty:
		return "SetProperty"
	case OpDeleteProp:
		return "DeleteProperty"
	default:
		return "Unknown"
	}
}

// Op is one primitive operation against the remote target.
//
// Field use varies by opcode: Node is always the subject; Parent is set
// for child-list edits; Key/Value carry attribute, style, data, listener
// and property payloads; Index and To carry list positions.
type Op struct {
	Op     OpCode
	Node   uint64
	Parent uint64
	Key    string
	Value  string
	Index  int
	To     int
}

// OpsFrame is a sequenced batch of operations, applied atomically by the
// target in order.
type OpsFrame struct {
	Seq uint64
	Ops []Op
}

// Encode appends the frame to the encoder.
func (f *OpsFrame) Encode(e *Encoder) {
	e.WriteByte(FrameOps)
	e.WriteUvarint(f.Seq)
	e.WriteUvarint(uint64(len(f.Ops)))
	for i := range f.Ops {
		op := &f.Ops[i]
		e.WriteByte(byte(op.Op))
		e.WriteUvarint(op.Node)
		switch op.Op {
		case OpCreateElement, OpCreateText, OpCreateComment, OpSetText, OpSetClass:
			e.WriteString(op.Value)
		case OpInsertChild:
			e.WriteUvarint(op.Parent)
			e.WriteSvarint(int64(op.Index))
		case OpRemoveChild:
			e.WriteUvarint(op.Parent)
		case OpMoveChild:
			e.WriteUvarint(op.Parent)
			e.WriteSvarint(int64(op.Index))
			e.WriteSvarint(int64(op.To))
		case OpSetAttribute, OpSetData, OpSetStyle, OpSetProperty:
			e.WriteString(op.Key)
			e.WriteString(op.Value)
		case OpRemoveAttr, OpClearData, OpRemoveStyle, OpDeleteProp,
			OpAddListener, OpRemoveListen:
			e.WriteString(op.Key)
		}
	}
}

// DecodeOpsFrame decodes a frame whose type byte has already been read.
func DecodeOpsFrame(d *Decoder) (*OpsFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	f := &OpsFrame{Seq: seq, Ops: make([]Op, 0, count)}
	for i := uint64(0); i < count; i++ {
		op, err := decodeOp(d)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		f.Ops = append(f.Ops, op)
	}
	return f, nil
}

func decodeOp(d *Decoder) (Op, error) {
	var op Op
	b, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Op = OpCode(b)
	if op.Node, err = d.ReadUvarint(); err != nil {
		return op, err
	}

	switch op.Op {
	case OpCreateElement, OpCreateText, OpCreateComment, OpSetText, OpSetClass:
		op.Value, err = d.ReadString()
	case OpInsertChild:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return op, err
		}
		var idx int64
		idx, err = d.ReadSvarint()
		op.Index = int(idx)
	case OpRemoveChild:
		op.Parent, err = d.ReadUvarint()
	case OpMoveChild:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return op, err
		}
		var from, to int64
		if from, err = d.ReadSvarint(); err != nil {
			return op, err
		}
		to, err = d.ReadSvarint()
		op.Index, op.To = int(from), int(to)
	case OpSetAttribute, OpSetData, OpSetStyle, OpSetProperty:
		if op.Key, err = d.ReadString(); err != nil {
			return op, err
		}
		op.Value, err = d.ReadString()
	case OpRemoveAttr, OpClearData, OpRemoveStyle, OpDeleteProp,
		OpAddListener, OpRemoveListen:
		op.Key, err = d.ReadString()
	default:
		return op, fmt.Errorf("wire: unknown opcode 0x%02x", b)
	}
	return op, err
}

// EventFrame carries one target event back to the engine. Payload is a
// JSON document whose shape the listener decides.
type EventFrame struct {
	Seq     uint64
	Node    uint64
	Name    string
	Payload []byte
}

// Encode appends the frame to the encoder.
func (f *EventFrame) Encode(e *Encoder) {
	e.WriteByte(FrameEvent)
	e.WriteUvarint(f.Seq)
	e.WriteUvarint(f.Node)
	e.WriteString(f.Name)
	e.WriteLenBytes(f.Payload)
}

// DecodeEventFrame decodes an event frame whose type byte has already
// been read.
func DecodeEventFrame(d *Decoder) (*EventFrame, error) {
	f := &EventFrame{}
	var err error
	if f.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if f.Node, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if f.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	payload, err := d.ReadLenBytes()
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		f.Payload = append([]byte(nil), payload...)
	}
	return f, nil
}
