package storage

// Resolved media tool paths. deps.CheckDependency overwrites these with
// absolute paths when the binaries are found outside PATH.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)
