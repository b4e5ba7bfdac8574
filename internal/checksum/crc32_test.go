package checksum

import "testing"

// TestCRC32_KnownVectors checks the IEEE reference values.
func TestCRC32_KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint32
	}{
		{name: "empty", input: nil, want: 0x00000000},
		{name: "check string", input: []byte("123456789"), want: 0xCBF43926},
		{name: "single a", input: []byte("a"), want: 0xE8B7BE43},
		{name: "abc", input: []byte("abc"), want: 0x352441C2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CRC32(tt.input); got != tt.want {
				t.Errorf("CRC32(%q) = %08x, want %08x", tt.input, got, tt.want)
			}
		})
	}
}

// TestVerify checks size and checksum agreement, and that any single-byte
// perturbation is caught.
func TestVerify(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	crc := CRC32(data)

	if !Verify(data, uint64(len(data)), crc) {
		t.Fatal("Verify rejected pristine data")
	}
	if Verify(data, uint64(len(data))+1, crc) {
		t.Error("Verify accepted wrong size")
	}
	if Verify(data[:len(data)-1], uint64(len(data)), crc) {
		t.Error("Verify accepted short data")
	}

	for i := range data {
		perturbed := append([]byte(nil), data...)
		perturbed[i] ^= 0x01
		if Verify(perturbed, uint64(len(perturbed)), crc) {
			t.Fatalf("Verify accepted perturbation at byte %d", i)
		}
	}
}
