package blockhash

import "testing"

func TestSumDeterministic(t *testing.T) {
	var seed Seed
	for i := range seed {
		seed[i] = byte(i)
	}
	data := []byte("stripe contents go here")
	a, err := Sum(seed, data)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	b, err := Sum(seed, data)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if !Equal(a, b) {
		t.Fatalf("Sum must be deterministic for identical input and seed")
	}
}

func TestSumDifferentSeedDiffers(t *testing.T) {
	var seedA, seedB Seed
	seedB[0] = 1
	data := []byte("identical data")
	a, err := Sum(seedA, data)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	b, err := Sum(seedB, data)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if Equal(a, b) {
		t.Fatalf("different seeds must produce different digests")
	}
}

func TestSumDetectsSingleBitFlip(t *testing.T) {
	var seed Seed
	original := []byte("the quick brown fox jumps over the lazy dog")
	flipped := append([]byte(nil), original...)
	flipped[3] ^= 0x01

	a, err := Sum(seed, original)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	b, err := Sum(seed, flipped)
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if Equal(a, b) {
		t.Fatalf("single bit flip must change the digest")
	}
}
