package deps

import (
	"bufio"
	"bytes"
	"os/exec"
	"strings"
)

// CheckFFmpeg resolves the configured ffmpeg binary. Segmentation shells out
// to it for every decode and clip export, so when the binary is present the
// detail field carries its version for status output.
func CheckFFmpeg(command string) Status {
	status := checkBinary(Requirement{
		Name:        "FFmpeg",
		Command:     command,
		Description: "MP3 decode and syllable clip encode",
	})
	if !status.Available {
		return status
	}
	if version := ffmpegVersion(status.Command); version != "" {
		status.Detail = "version " + version
	}
	return status
}

// ffmpegVersion extracts the release token from the first line of
// `ffmpeg -version`, e.g. "6.1.1" out of "ffmpeg version 6.1.1 Copyright ...".
func ffmpegVersion(command string) string {
	out, err := exec.Command(command, "-version").Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if !scanner.Scan() {
		return ""
	}
	fields := strings.Fields(scanner.Text())
	for i, field := range fields {
		if field == "version" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}
