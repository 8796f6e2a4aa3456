package filter

// suspiciousVolumeRatio is the volume-to-liquidity multiple above which
// reported volume is treated as manufactured.
const suspiciousVolumeRatio = 10.0

// IsSuspiciousVolume is the local fake-volume heuristic: volume more than
// ten times liquidity is suspicious. A zero-liquidity pool is out of this
// heuristic's scope, not automatically suspicious. The ratio boundary is
// strict: exactly 10x passes.
func IsSuspiciousVolume(liquidity, volume float64) bool {
	if liquidity <= 0 {
		return false
	}
	return volume/liquidity > suspiciousVolumeRatio
}
