package wire

import (
	"errors"
	"reflect"
	"testing"
)

func TestOpsFrameRoundTrip(t *testing.T) {
	in := &OpsFrame{
		Seq: 7,
		Ops: []Op{
			{Op: OpCreateElement, Node: 1, Value: "div"},
			{Op: OpSetAttribute, Node: 1, Key: "id", Value: "main"},
			{Op: OpCreateText, Node: 2, Value: "hello"},
			{Op: OpInsertChild, Node: 2, Parent: 1, Index: 0},
			{Op: OpInsertChild, Node: 1, Parent: 0, Index: 0},
			{Op: OpMoveChild, Node: 2, Parent: 1, Index: 0, To: 3},
			{Op: OpAddListener, Node: 1, Key: "click"},
			{Op: OpSetClass, Node: 1, Value: "card wide"},
			{Op: OpRemoveAttr, Node: 1, Key: "id"},
			{Op: OpRemoveChild, Node: 2, Parent: 1},
		},
	}

	var enc Encoder
	in.Encode(&enc)

	d := NewDecoder(enc.Bytes())
	typ, err := d.ReadByte()
	if err != nil || typ != FrameOps {
		t.Fatalf("frame type = 0x%02x, %v", typ, err)
	}
	out, err := DecodeOpsFrame(d)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Seq != in.Seq {
		t.Errorf("seq = %d, want %d", out.Seq, in.Seq)
	}
	if !reflect.DeepEqual(out.Ops, in.Ops) {
		t.Errorf("ops mismatch:\n got %+v\nwant %+v", out.Ops, in.Ops)
	}
	if !d.EOF() {
		t.Errorf("%d bytes left after decode", d.Remaining())
	}
}

func TestEventFrameRoundTrip(t *testing.T) {
	in := &EventFrame{Seq: 12, Node: 9, Name: "click", Payload: []byte(`{"x":4}`)}

	var enc Encoder
	in.Encode(&enc)

	d := NewDecoder(enc.Bytes())
	typ, _ := d.ReadByte()
	if typ != FrameEvent {
		t.Fatalf("frame type = 0x%02x", typ)
	}
	out, err := DecodeEventFrame(d)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestEventFrameEmptyPayload(t *testing.T) {
	in := &EventFrame{Seq: 1, Node: 2, Name: "blur"}

	var enc Encoder
	in.Encode(&enc)

	d := NewDecoder(enc.Bytes())
	d.ReadByte()
	out, err := DecodeEventFrame(d)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Payload != nil {
		t.Errorf("payload = %v, want nil", out.Payload)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	var enc Encoder
	enc.WriteByte(FrameOps)
	enc.WriteUvarint(1) // seq
	enc.WriteUvarint(1) // count
	enc.WriteByte(0xEE)
	enc.WriteUvarint(5)

	d := NewDecoder(enc.Bytes())
	d.ReadByte()
	if _, err := DecodeOpsFrame(d); err == nil {
		t.Fatal("expected unknown opcode error")
	}
}

func TestDecodeTruncatedFrame(t *testing.T) {
	in := &OpsFrame{Seq: 3, Ops: []Op{{Op: OpSetText, Node: 4, Value: "truncate me"}}}
	var enc Encoder
	in.Encode(&enc)
	full := enc.Bytes()

	d := NewDecoder(full[1 : len(full)-4])
	if _, err := DecodeOpsFrame(d); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("err = %v, want ErrShortBuffer", err)
	}
}
