// Copyright 2026 The Hangar Authors
// SPDX-License-Identifier: Apache-2.0

package coupon

import "github.com/hangar-foundation/hangar/lib/ref"

// Verifier checks coupons against one trusted signer. It is a value,
// not a long-lived object: flows construct a Verifier from the signer
// currently on record inside their own transaction, so a rotation
// committed earlier is always observed and a rotation racing this
// request lands before or after it, never halfway.
type Verifier struct {
	// Signer is the only address whose coupons verify.
	Signer ref.Party
}

// Verify reports whether sig is the trusted signer's signature over
// digest. A malformed triple returns ErrInvalidSignature; a
// well-formed signature from any other key returns false with no
// error, and the caller treats that as authorization denied.
func (v Verifier) Verify(digest Digest, sig Signature) (bool, error) {
	recovered, err := RecoverSigner(digest, sig)
	if err != nil {
		return false, err
	}
	return recovered == v.Signer, nil
}
