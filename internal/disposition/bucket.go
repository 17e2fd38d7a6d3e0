package disposition

import "fmt"

// Bucket names a terminal classification and its output stream.
type Bucket string

const (
	BucketError           Bucket = "error"
	BucketForeign         Bucket = "foreign"
	BucketInterim         Bucket = "interim"
	BucketNotABook        Bucket = "not-a-book"
	BucketTooOld          Bucket = "too-old"
	BucketTooNew          Bucket = "too-new"
	BucketRenewed         Bucket = "renewed"
	BucketProbablyRenewed Bucket = "probably-renewed"
	BucketPossiblyRenewed Bucket = "possibly-renewed"
	BucketNotRenewed      Bucket = "not-renewed"
)

var allBuckets = []Bucket{
	BucketError,
	BucketForeign,
	BucketInterim,
	BucketNotABook,
	BucketTooOld,
	BucketTooNew,
	BucketRenewed,
	BucketProbablyRenewed,
	BucketPossiblyRenewed,
	BucketNotRenewed,
}

// Buckets lists every bucket in funnel order.
func Buckets() []Bucket {
	return append([]Bucket(nil), allBuckets...)
}

// ParseBucket validates a bucket name.
func ParseBucket(name string) (Bucket, error) {
	for _, b := range allBuckets {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bucket %q", name)
}

// InRange reports whether b is one of the renewal-matching buckets.
func (b Bucket) InRange() bool {
	switch b {
	case BucketRenewed, BucketProbablyRenewed, BucketPossiblyRenewed, BucketNotRenewed:
		return true
	default:
		return false
	}
}

func (b Bucket) String() string {
	return string(b)
}
