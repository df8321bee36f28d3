package chain

// merkleRoot implements §4.2: empty list hashes to SHA256(""); otherwise the
// transaction hash list is repeatedly collapsed pairwise, duplicating the
// last hash at each odd-length level, until one hash remains.
func merkleRoot(txs []*Transaction) (string, error) {
	if len(txs) == 0 {
		return sha256Hex(nil), nil
	}

	level := make([]string, len(txs))
	for i, tx := range txs {
		h, err := tx.Hash()
		if err != nil {
			return "", err
		}
		level[i] = h
	}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]string, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, sha256Hex([]byte(level[i]+level[i+1])))
		}
		level = next
	}

	return level[0], nil
}
