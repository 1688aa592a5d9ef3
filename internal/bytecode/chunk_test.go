package bytecode

import "testing"

func TestChunkWriteAndLineInfo(t *testing.T) {
	c := NewChunk("test")
	c.WriteSimple(OpLoadTrue, 1)
	c.WriteSimple(OpLoadFalse, 1)
	c.WriteSimple(OpAdd, 2)

	if c.InstructionCount() != 3 {
		t.Fatalf("InstructionCount() = %d, want 3", c.InstructionCount())
	}
	if got := c.GetLine(0); got != 1 {
		t.Errorf("GetLine(0) = %d, want 1", got)
	}
	if got := c.GetLine(1); got != 1 {
		t.Errorf("GetLine(1) = %d, want 1", got)
	}
	if got := c.GetLine(2); got != 2 {
		t.Errorf("GetLine(2) = %d, want 2", got)
	}
}

func TestChunkAddConstantDeduplicates(t *testing.T) {
	c := NewChunk("test")
	i1 := c.AddConstant(Constant{Kind: ConstNumber, Number: 42})
	i2 := c.AddConstant(Constant{Kind: ConstNumber, Number: 42})
	i3 := c.AddConstant(Constant{Kind: ConstString, Str: "42"})

	if i1 != i2 {
		t.Errorf("equal number constants got different indices: %d, %d", i1, i2)
	}
	if i3 == i1 {
		t.Errorf("string and number constants collided at index %d", i3)
	}
	if len(c.Constants) != 2 {
		t.Errorf("len(Constants) = %d, want 2", len(c.Constants))
	}
}

func TestChunkJumpPatching(t *testing.T) {
	c := NewChunk("test")
	c.WriteSimple(OpLoadTrue, 1)
	jump := c.EmitJump(OpJumpIfFalse, 1)
	c.WriteSimple(OpLoadConst, 2)
	c.WriteSimple(OpLoadConst, 3)
	if err := c.PatchJump(jump); err != nil {
		t.Fatalf("PatchJump() error = %v", err)
	}

	inst := c.Code[jump]
	wantOffset := len(c.Code) - jump - 1
	if int(inst.SignedB()) != wantOffset {
		t.Errorf("patched jump offset = %d, want %d", inst.SignedB(), wantOffset)
	}
}

func TestChunkEmitLoop(t *testing.T) {
	c := NewChunk("test")
	loopStart := c.InstructionCount()
	c.WriteSimple(OpLoadTrue, 1)
	c.WriteSimple(OpPop, 1)
	if err := c.EmitLoop(loopStart, 1); err != nil {
		t.Fatalf("EmitLoop() error = %v", err)
	}

	last := c.Code[len(c.Code)-1]
	if last.OpCode() != OpLoop {
		t.Fatalf("last instruction = %v, want OpLoop", last.OpCode())
	}
	wantOffset := loopStart - (len(c.Code) - 1) - 1
	if int(last.SignedB()) != wantOffset {
		t.Errorf("loop offset = %d, want %d", last.SignedB(), wantOffset)
	}
}

func TestChunkValidateCatchesOutOfRangeConstant(t *testing.T) {
	c := NewChunk("test")
	c.Write(OpLoadConst, 0, 5, 1)
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for out-of-range constant index")
	}

	c2 := NewChunk("test")
	idx := c2.AddConstant(Constant{Kind: ConstNumber, Number: 1})
	c2.Write(OpLoadConst, 0, uint16(idx), 1)
	if err := c2.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestChunkTryInfo(t *testing.T) {
	c := NewChunk("test")
	idx := c.WriteSimple(OpPushTry, 1)
	c.SetTryInfo(idx, TryInfo{HasCatch: true, CatchTarget: 7})

	info, ok := c.TryInfoAt(idx)
	if !ok {
		t.Fatal("TryInfoAt() ok = false, want true")
	}
	if !info.HasCatch || info.CatchTarget != 7 {
		t.Errorf("TryInfoAt() = %+v, want HasCatch=true CatchTarget=7", info)
	}

	if _, ok := c.TryInfoAt(idx + 1); ok {
		t.Error("TryInfoAt() for unregistered index returned ok = true")
	}
}

func TestChunkStringDisassembly(t *testing.T) {
	c := NewChunk("main")
	idx := c.AddConstant(Constant{Kind: ConstNumber, Number: 1})
	c.Write(OpLoadConst, 0, uint16(idx), 1)
	c.WriteSimple(OpReturn, 1)

	out := c.String()
	if out == "" {
		t.Fatal("String() returned empty disassembly")
	}
	if want := "LOAD_CONST"; !contains(out, want) {
		t.Errorf("disassembly missing %q:\n%s", want, out)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
