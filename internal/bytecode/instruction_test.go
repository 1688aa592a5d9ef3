package bytecode

import "testing"

func TestInstructionEncoding(t *testing.T) {
	tests := []struct {
		name     string
		op       OpCode
		a        byte
		b        uint16
		expected Instruction
	}{
		{"simple instruction with no operands", OpHalt, 0, 0, Instruction(OpHalt)},
		{"load constant at index 42", OpLoadConst, 0, 42, Instruction(uint32(OpLoadConst) | 42<<16)},
		{"get local at slot 5", OpGetLocal, 0, 5, Instruction(uint32(OpGetLocal) | 5<<16)},
		{"jump with offset 100", OpJump, 0, 100, Instruction(uint32(OpJump) | 100<<16)},
		{"call with 3 arguments", OpCall, 3, 0, Instruction(uint32(OpCall) | 3<<8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := MakeInstruction(tt.op, tt.a, tt.b)
			if inst != tt.expected {
				t.Errorf("MakeInstruction() = 0x%08X, want 0x%08X", inst, tt.expected)
			}
		})
	}
}

func TestInstructionDecoding(t *testing.T) {
	inst := MakeInstruction(OpCall, 2, 10)
	if got := inst.OpCode(); got != OpCall {
		t.Errorf("OpCode() = %v, want %v", got, OpCall)
	}
	if got := inst.A(); got != 2 {
		t.Errorf("A() = %d, want 2", got)
	}
	if got := inst.B(); got != 10 {
		t.Errorf("B() = %d, want 10", got)
	}
}

func TestInstructionSignedB(t *testing.T) {
	off := int16(-5)
	inst := MakeInstruction(OpLoop, 0, uint16(off))
	if got := inst.SignedB(); got != -5 {
		t.Errorf("SignedB() = %d, want -5", got)
	}
}

func TestOpCodeString(t *testing.T) {
	if got := OpAdd.String(); got != "ADD" {
		t.Errorf("OpAdd.String() = %q, want ADD", got)
	}
	unknown := OpCode(255)
	if got := unknown.String(); got != "UNKNOWN" {
		t.Errorf("unknown opcode String() = %q, want UNKNOWN", got)
	}
}
