package typbatch

import "github.com/cespare/xxhash/v2"

// Fingerprint is a 128-bit content hash used to detect unchanged files
// across runs. It covers the error state of a load as well as its bytes,
// so a file flipping between missing and present invalidates correctly.
//
// The design assumes 128 bits are collision-free for cache invalidation.
// This is a probabilistic assumption, not a guarantee; full content
// comparison would remove it at a material performance cost.
type Fingerprint [2]uint64

// fingerprintOf hashes a load result, error state included. The two
// halves are domain-separated so they are independent 64-bit digests.
func fingerprintOf(data []byte, err error) Fingerprint {
	lo := xxhash.New()
	hi := xxhash.New()
	hi.WriteString("\x00typbatch.fp.hi")
	if err != nil {
		lo.WriteString("err\x00")
		lo.WriteString(err.Error())
		hi.WriteString("err\x00")
		hi.WriteString(err.Error())
	} else {
		lo.WriteString("ok\x00")
		lo.Write(data)
		hi.WriteString("ok\x00")
		hi.Write(data)
	}
	return Fingerprint{lo.Sum64(), hi.Sum64()}
}
