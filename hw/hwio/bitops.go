package hwio

func GetBit8(v uint8, n uint) bool {
	return GetBiti8(v, n) != 0
}

func GetBiti8(v uint8, n uint) uint8 {
	return v >> (n) & 0x01
}

// Bool8 returns 1<<n if b is true, 0 otherwise.
func Bool8(b bool, n uint) uint8 {
	if b {
		return 1 << n
	}
	return 0
}

func ClearBit8(v *uint8, n uint) {
	*v &= ^(1 << n)
}
