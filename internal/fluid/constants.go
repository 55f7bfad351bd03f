package fluid

// Bucket is the number of droplets in one bucket. All transfer engine moves
// are denominated in whole buckets.
const Bucket int64 = 81000

// MilliBucket is the droplet value of one thousandth of a bucket.
const MilliBucket = Bucket / 1000

// General-purpose tank capacities, in droplets.
const (
	CapacitySmall   = 5 * Bucket
	CapacityDefault = 10 * Bucket
	CapacityMedium  = 25 * Bucket
	CapacityLarge   = 50 * Bucket
	CapacityXL      = 100 * Bucket
)

// Material-tier tank capacities, in droplets.
const (
	CapacityWood      = 4 * Bucket
	CapacityStone     = 16 * Bucket
	CapacityCopper    = 36 * Bucket
	CapacityIron      = 64 * Bucket
	CapacityObsidian  = 100 * Bucket
	CapacityGold      = 144 * Bucket
	CapacityDiamond   = 196 * Bucket
	CapacityEmerald   = 256 * Bucket
	CapacityStar      = 324 * Bucket
	CapacityNetherite = 432 * Bucket
	CapacityEnd       = 540 * Bucket
)
