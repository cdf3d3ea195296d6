package chat

import "math/rand"

// Sample draws n messages without replacement using a seeded generator.
// The result keeps the input order.
func Sample(messages []Message, n int, seed int64) []Message {
	if n <= 0 {
		return nil
	}
	if n >= len(messages) {
		out := make([]Message, len(messages))
		copy(out, messages)
		return out
	}

	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(len(messages))[:n]
	keep := make(map[int]bool, n)
	for _, idx := range picked {
		keep[idx] = true
	}

	out := make([]Message, 0, n)
	for i, msg := range messages {
		if keep[i] {
			out = append(out, msg)
		}
	}
	return out
}

// Filter returns the messages of the given type
func Filter(messages []Message, messageType MessageType) []Message {
	var out []Message
	for _, msg := range messages {
		if msg.Type == messageType {
			out = append(out, msg)
		}
	}
	return out
}
