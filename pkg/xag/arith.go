// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package xag

// Arithmetic circuit generators over little-endian signal vectors (bit 0 at
// index 0).  The modular generators assume their operands are already reduced
// below the modulus; the reader guarantees this for frontend-produced code.

// ConstantWord expands an unsigned constant into a little-endian vector of
// constant signals of the given width.
func ConstantWord(p *Network, value uint64, width int) []Signal {
	word := make([]Signal, width)
	//
	for i := 0; i < width; i++ {
		if value&(1<<uint(i)) != 0 {
			word[i] = p.ConstTrue()
		} else {
			word[i] = p.ConstFalse()
		}
	}
	//
	return word
}

// Mux returns the bitwise multiplexer "if c then t else e" over two vectors
// of equal width.
func Mux(p *Network, c Signal, t, e []Signal) []Signal {
	out := make([]Signal, len(t))
	//
	for i := range t {
		out[i] = p.CreateIte(c, t[i], e[i])
	}
	//
	return out
}

// FullAdder returns sum and carry-out of a single-bit addition.  The carry
// uses the majority form, costing one AND gate.
func FullAdder(p *Network, a, b, c Signal) (Signal, Signal) {
	return p.CreateXor(p.CreateXor(a, b), c), p.CreateMaj(a, b, c)
}

// CarryRippleAdderInplace adds b onto a, rippling the carry through every
// position.  On return carry holds the carry-out.
func CarryRippleAdderInplace(p *Network, a, b []Signal, carry *Signal) {
	for i := range a {
		a[i], *carry = FullAdder(p, a[i], b[i], *carry)
	}
}

// CarryRippleSubtractorInplace subtracts b from a via two's complement.  The
// caller initializes carry to constant true ("no incoming borrow"); on return
// carry holds the borrow-out, i.e. whether a < b held.
func CarryRippleSubtractorInplace(p *Network, a, b []Signal, carry *Signal) {
	for i := range a {
		a[i], *carry = FullAdder(p, a[i], b[i].Not(), *carry)
	}
	//
	*carry = carry.Not()
}

// ModularAdderInplace adds b onto a modulo 2^len by discarding the carry-out.
func ModularAdderInplace(p *Network, a, b []Signal) {
	carry := p.ConstFalse()
	CarryRippleAdderInplace(p, a, b, &carry)
}

// ModularAdderInplaceMod adds b onto a modulo the constant m, assuming both
// operands are below m.
func ModularAdderInplaceMod(p *Network, a, b []Signal, m uint64) {
	width := len(a)
	// Extended sum a+b over width+1 bits.
	sum := make([]Signal, 0, width+1)
	sum = append(sum, a...)
	sum = append(sum, p.ConstFalse())
	ext := make([]Signal, 0, width+1)
	ext = append(ext, b...)
	ext = append(ext, p.ConstFalse())
	carry := p.ConstFalse()
	CarryRippleAdderInplace(p, sum, ext, &carry)
	//
	reduceModulo(p, a, sum, m)
}

// ModularDoublingInplaceMod doubles a modulo the constant m, assuming a is
// below m.
func ModularDoublingInplaceMod(p *Network, a []Signal, m uint64) {
	width := len(a)
	// Shift left by one over width+1 bits.
	dbl := make([]Signal, 0, width+1)
	dbl = append(dbl, p.ConstFalse())
	dbl = append(dbl, a...)
	//
	reduceModulo(p, a, dbl, m)
}

// ModularMultiplierInplaceMod multiplies a by b modulo the constant m using
// double-and-add, writing the product into a.  Assumes a is below m.
func ModularMultiplierInplaceMod(p *Network, a, b []Signal, m uint64) {
	width := len(a)
	acc := make([]Signal, width)
	//
	for i := range acc {
		acc[i] = p.ConstFalse()
	}
	//
	for i := width - 1; i >= 0; i-- {
		ModularDoublingInplaceMod(p, acc, m)
		// Gate the addend on the i-th multiplier bit.
		addend := make([]Signal, width)
		for j := range addend {
			addend[j] = p.CreateAnd(a[j], b[i])
		}
		//
		ModularAdderInplaceMod(p, acc, addend, m)
	}
	//
	copy(a, acc)
}

// reduceModulo writes into dst the value of the extended vector val reduced
// once by m: val if val < m, otherwise val - m.  Valid whenever val < 2m.
func reduceModulo(p *Network, dst []Signal, val []Signal, m uint64) {
	width := len(dst)
	sub := make([]Signal, len(val))
	copy(sub, val)
	borrow := p.ConstTrue()
	CarryRippleSubtractorInplace(p, sub, ConstantWord(p, m, len(val)), &borrow)
	// borrow set means val < m.
	for i := 0; i < width; i++ {
		dst[i] = p.CreateIte(borrow, val[i], sub[i])
	}
}
