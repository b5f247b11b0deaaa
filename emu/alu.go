package emu

// ALU implements ARM 32-bit arithmetic and logic operations.
// Operand2 is passed in already resolved by the barrel shifter.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// MOV performs Rd = op2. With setFlags, N and Z follow the result.
func (a *ALU) MOV(rd uint8, op2 uint32, setFlags bool) {
	a.regFile.WriteReg(rd, op2)

	if setFlags {
		a.regFile.CPSR.setNZ(op2)
	}
}

// ADD performs Rd = Rn + op2 (mod 2^32).
func (a *ALU) ADD(rd, rn uint8, op2 uint32, setFlags bool) {
	op1 := a.regFile.ReadReg(rn)
	result := op1 + op2

	a.regFile.WriteReg(rd, result)

	if setFlags {
		a.setAddFlags(op1, op2, result)
	}
}

// SUB performs Rd = Rn - op2 (mod 2^32).
func (a *ALU) SUB(rd, rn uint8, op2 uint32, setFlags bool) {
	op1 := a.regFile.ReadReg(rn)
	result := op1 - op2

	a.regFile.WriteReg(rd, result)

	if setFlags {
		a.setSubFlags(op1, op2, result)
	}
}

// CMP computes Rn - op2 and sets all four flags, discarding the result.
func (a *ALU) CMP(rn uint8, op2 uint32) {
	op1 := a.regFile.ReadReg(rn)
	a.setSubFlags(op1, op2, op1-op2)
}

// AND performs Rd = Rn & op2. Flags: N and Z only.
func (a *ALU) AND(rd, rn uint8, op2 uint32, setFlags bool) {
	result := a.regFile.ReadReg(rn) & op2

	a.regFile.WriteReg(rd, result)

	if setFlags {
		a.regFile.CPSR.setNZ(result)
	}
}

// ORR performs Rd = Rn | op2. Flags: N and Z only.
func (a *ALU) ORR(rd, rn uint8, op2 uint32, setFlags bool) {
	result := a.regFile.ReadReg(rn) | op2

	a.regFile.WriteReg(rd, result)

	if setFlags {
		a.regFile.CPSR.setNZ(result)
	}
}

// MUL performs Rd = Rm * Rs (mod 2^32). C and V are left as they were.
func (a *ALU) MUL(rd, rm, rs uint8, setFlags bool) {
	result := a.regFile.ReadReg(rm) * a.regFile.ReadReg(rs)

	a.regFile.WriteReg(rd, result)

	if setFlags {
		a.regFile.CPSR.setNZ(result)
	}
}

// setAddFlags sets NZCV flags for 32-bit addition.
func (a *ALU) setAddFlags(op1, op2, result uint32) {
	flags := &a.regFile.CPSR
	flags.setNZ(result)

	// C: unsigned overflow out of bit 31
	flags.C = result < op1

	// V: both operands share a sign that the result does not
	op1Sign := op1 >> 31
	op2Sign := op2 >> 31
	resultSign := result >> 31
	flags.V = (op1Sign == op2Sign) && (op1Sign != resultSign)
}

// setSubFlags sets NZCV flags for 32-bit subtraction.
func (a *ALU) setSubFlags(op1, op2, result uint32) {
	flags := &a.regFile.CPSR
	flags.setNZ(result)

	// C: set when no borrow occurred
	flags.C = op1 >= op2

	// V: operands differ in sign and the result's sign differs from op1
	op1Sign := op1 >> 31
	op2Sign := op2 >> 31
	resultSign := result >> 31
	flags.V = (op1Sign != op2Sign) && (op1Sign != resultSign)
}
