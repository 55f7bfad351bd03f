package fluid

// DropletsToMb converts a droplet quantity to milli-buckets, truncating.
// Conversions round-trip exactly only for multiples of MilliBucket.
func DropletsToMb(droplets int64) int64 {
	return droplets * 1000 / Bucket
}

// MbToDroplets converts a milli-bucket quantity to droplets, truncating.
func MbToDroplets(mb int64) int64 {
	return mb * Bucket / 1000
}
