package chain

// IsValidNext implements §4.6: b fits directly on top of prev iff its hash
// is self-consistent, it links to prev by hash, its index follows prev's,
// and its hash meets the leading-zero target for its own stake snapshot.
func IsValidNext(b, prev *Block) (bool, error) {
	if b == nil || prev == nil {
		return false, nil
	}

	recomputed, err := b.RecomputeHash()
	if err != nil {
		return false, err
	}
	if b.Hash != recomputed {
		return false, nil
	}
	if b.PreviousHash != prev.Hash {
		return false, nil
	}
	if b.Index != prev.Index+1 {
		return false, nil
	}
	if !meetsTarget(b.Hash, Difficulty(b.stakeOrZero())) {
		return false, nil
	}
	return true, nil
}

// ValidateChain implements §4.6's validate_chain: blocks[0] must equal the
// expected deterministic genesis, and every subsequent block must satisfy
// IsValidNext against its predecessor. It returns overall validity plus a
// per-miner_id stake delta: each block contributes +1 to its miner_id if it
// validates and -1 if it doesn't, and the returned map sums those deltas per
// miner across every block it mined in this chain. Genesis contributes no
// miner and is excluded from the map.
//
// §4.5 step 4 and §9's dict-iteration note describe this as a per-miner
// boolean ("true if all of its blocks validated, false if any failed"); that
// reading collapses every miner to a single +1/-1 regardless of how many
// blocks it mined, which contradicts §8 invariant 9 and scenario E6 (stake
// must move by the exact block count). This implementation follows
// invariant 9/E6's literal per-block arithmetic instead — see DESIGN.md's
// Open Questions entry for the reconciliation.
func ValidateChain(blocks []*Block) (bool, map[int]int, error) {
	minerDeltas := make(map[int]int)

	if len(blocks) == 0 {
		return false, minerDeltas, nil
	}

	expectedGenesis, err := Genesis()
	if err != nil {
		return false, minerDeltas, err
	}
	if blocks[0].Hash != expectedGenesis.Hash {
		return false, minerDeltas, nil
	}

	ok := true
	for i := 1; i < len(blocks); i++ {
		valid, err := IsValidNext(blocks[i], blocks[i-1])
		if err != nil {
			return false, minerDeltas, err
		}
		if !valid {
			ok = false
		}

		minerID := blocks[i].MinerID
		if minerID == nil {
			continue
		}
		if valid {
			minerDeltas[*minerID]++
		} else {
			minerDeltas[*minerID]--
		}
	}

	return ok, minerDeltas, nil
}

// LongestChainWins implements the longest-chain rule of §4.6: strictly
// greater length wins, ties keep the incumbent.
func LongestChainWins(current, candidate *Chain) bool {
	return candidate.Length() > current.Length()
}
