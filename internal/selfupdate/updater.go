// Package selfupdate replaces the running binary with a GitHub release
// after verifying its checksum.
package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
	ErrNoRelease     = errors.New("release not found")
)

// binaryName is the executable inside release archives, without the
// Windows ".exe" suffix.
const binaryName = "gakuroku"

// UpdateInput selects the release to install. An empty TargetVersion means
// the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// UpdateProgress is reported at the start of every update stage.
type UpdateProgress struct {
	Stage   string
	Message string
}

// bundle locates the files of one release built for this platform.
type bundle struct {
	tag          string
	asset        string
	assetURL     string
	checksumsURL string
}

func (c *Checker) bundle(tag, asset string) bundle {
	dir := fmt.Sprintf("%s/%s/%s/releases/download/%s",
		strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, tag)
	return bundle{
		tag:          tag,
		asset:        asset,
		assetURL:     dir + "/" + asset,
		checksumsURL: dir + "/checksums.txt",
	}
}

// Update downloads, verifies and installs a release over the running
// executable. progress may be nil.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(UpdateProgress)) error {
	report := func(stage, format string, args ...any) {
		if progress != nil {
			progress(UpdateProgress{Stage: stage, Message: fmt.Sprintf(format, args...)})
		}
	}
	if isDevBuild(input.CurrentVersion) {
		return ErrDevBuild
	}

	tag, err := c.resolveTag(ctx, input, report)
	if err != nil {
		return err
	}
	asset, err := assetName()
	if err != nil {
		return err
	}
	b := c.bundle(tag, asset)

	report("download", "Downloading %s...", tag)
	archive, err := c.get(ctx, b.assetURL, "")
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound && input.TargetVersion != "" {
			return fmt.Errorf("%w: %s has no %s", ErrNoRelease, tag, asset)
		}
		return fmt.Errorf("download archive: %w", err)
	}

	report("verify", "Verifying checksum...")
	raw, err := c.get(ctx, b.checksumsURL, "")
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	if err := parseChecksums(raw).verify(asset, archive); err != nil {
		return err
	}

	report("extract", "Extracting binary...")
	binary, err := unpack(asset, archive)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report("apply", "Applying update...")
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if err := install(target, binary); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	report("done", "Updated to %s", tag)
	return nil
}

// resolveTag returns the requested tag, or the latest one when it is newer
// than the running version.
func (c *Checker) resolveTag(ctx context.Context, input *UpdateInput, report func(string, string, ...any)) (string, error) {
	if input.TargetVersion != "" {
		tag := canonical(input.TargetVersion)
		if canonical(input.CurrentVersion) == tag {
			return "", ErrAlreadyLatest
		}
		return tag, nil
	}

	report("check", "Checking for latest version...")
	res, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}
	if !res.UpdateAvailable {
		return "", ErrAlreadyLatest
	}
	return res.LatestVersion, nil
}

func assetName() (string, error) {
	return assetNameFor(runtime.GOOS, runtime.GOARCH)
}

// assetNameFor follows goreleaser's default archive naming: one universal
// macOS tarball, per-arch tarballs for Linux and zips for Windows.
func assetNameFor(goos, goarch string) (string, error) {
	if goos == "darwin" {
		return binaryName + "_Darwin_all.tar.gz", nil
	}
	arch, ok := releaseArch[goarch]
	if !ok {
		return "", fmt.Errorf("unsupported architecture: %s", goarch)
	}
	switch goos {
	case "linux":
		return fmt.Sprintf("%s_Linux_%s.tar.gz", binaryName, arch), nil
	case "windows":
		return fmt.Sprintf("%s_Windows_%s.zip", binaryName, arch), nil
	}
	return "", fmt.Errorf("unsupported operating system: %s", goos)
}

var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}
