//go:build linux && amd64

package oracle

import (
	"runtime"

	"github.com/CuB3y0nd/axium/internal/axlog"
	"github.com/CuB3y0nd/axium/sidechannel/cpu"
	"github.com/CuB3y0nd/axium/sidechannel/telemetry"
)

// Confidence evaluates whether a vote vector v has a statistically
// significant single winner, given threshold T.
//
// All four conditions must hold:
//  1. The maximum vote count m is >= T.
//  2. Exactly one index attains m (no tie).
//  3. The lead over the runner-up s satisfies m-s >= m/8+2, an empirically
//     tuned margin rather than a derived bound.
//  4. m >= 2*avg, where avg is the mean vote count over all n candidates
//     (signal-to-noise ratio).
//
// Returns the winning index, or -1 if no winner is declared.
func Confidence(v []int, threshold int) int {
	n := len(v)
	if n == 0 {
		return -1
	}

	winner := -1
	maxV := -1
	secondV := -1
	numMax := 0
	total := 0

	for i, count := range v {
		total += count
		switch {
		case count > maxV:
			secondV = maxV
			maxV = count
			winner = i
			numMax = 1
		case count == maxV:
			numMax++
		case count > secondV:
			secondV = count
		}
	}

	if maxV < threshold {
		return -1
	}
	if numMax != 1 {
		return -1
	}
	if secondV < 0 {
		secondV = 0
	}
	minLead := maxV/8 + 2
	if maxV-secondV < minLead {
		return -1
	}
	avg := float64(total) / float64(n)
	if float64(maxV) < 2*avg {
		return -1
	}
	return winner
}

// QueryStat performs up to rounds queries of o at input, accumulating
// results into votes (length n_candidates, caller-owned and not zeroed
// here, callers amortize samples across calls). Every quarter of rounds it
// evaluates Confidence and returns early on a winner; otherwise it returns
// the winner (or -1) after the final round.
func QueryStat(o Oracle, input, rounds, threshold int, votes []int) int {
	if o == nil || len(votes) == 0 {
		return -1
	}
	n := len(votes)
	quarter := rounds / 4
	if quarter == 0 {
		quarter = 1
	}
	for r := 0; r < rounds; r++ {
		res := o.Query(input)
		if res >= 0 && res < n {
			votes[res]++
		}
		if (r+1)%quarter == 0 {
			if w := Confidence(votes, threshold); w >= 0 {
				return w
			}
		}
	}
	return Confidence(votes, threshold)
}

// ScanStat is the statistical counterpart to Scan: for each byte position it
// retries QueryStat with adaptive backoff, decaying votes periodically to
// suppress stale noise, until a confident byte is found or maxRetries is
// exhausted. It writes the byte on success; on sustained failure it logs and
// stops the scan at that index. Returns the number of bytes written.
func ScanStat(o Oracle, buf []byte, terminator, rounds, threshold, maxRetries int, votes []int) int {
	if o == nil || buf == nil || len(votes) == 0 {
		return 0
	}

	i := 0
	for ; i < len(buf); i++ {
		for j := range votes {
			votes[j] = 0
		}

		res := -1
		used := 0
		decayEvery := maxRetries/3 + 1
		for attempt := 0; attempt < maxRetries && res == -1; attempt++ {
			res = QueryStat(o, i, rounds, threshold, votes)
			used = attempt + 1
			if res == -1 {
				backoff(attempt)
				if (attempt+1)%5 == 0 {
					axlog.Debug("weak signal, retrying", "index", i, "attempt", attempt+1)
				}
				if (attempt+1)%decayEvery == 0 {
					decay(votes)
				}
			}
		}

		if res == -1 {
			axlog.Warning("lost signal", "index", i, "samples", maxRetries*rounds)
			telemetry.ObserveLostSignal()
			break
		}
		telemetry.ObserveScanRetries(used)

		buf[i] = byte(res)
		if terminator >= 0 && res == terminator {
			i++
			break
		}
	}
	return i
}

// backoff implements the adaptive retry delay: the first 5 attempts
// cooperatively yield the scheduling quantum; attempts 6..10 busy-wait for
// roughly 10000*2^attempt cycles via cpu.Spin, beyond which the exponent is
// capped at 10. This package only depends on sidechannel/cpu for the spin
// primitive, not for measurement, so it stays usable against any Oracle,
// not just cache-timing ones.
func backoff(attempt int) {
	if attempt < 5 {
		runtime.Gosched()
		return
	}
	exp := attempt
	if exp > 10 {
		exp = 10
	}
	cpu.Spin(10000 << uint(exp))
}

// decay halves every vote count (integer right shift by 1), attenuating
// transient noise while preserving trend.
func decay(votes []int) {
	for i := range votes {
		votes[i] >>= 1
	}
}
