// Package cli implements the host-resolution and mountpoint-preparation
// helpers shared by the shfs command-line front end.
package cli

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/jacobsa/fuse"

	"github.com/JMARyA/shfs/pkg/errors"
)

// DefaultPort is the shfs server's default listen port (spec.md §6).
const DefaultPort = 30

// rootMarkerFile names the marker file walked up from a mountpoint when
// no explicit host/volume is given to `shfs mount`. Adapted from
// complyue/jdfs's "__jdfs_root__" magic file, renamed to this project.
const rootMarkerFile = ".shfs-root"

// PrepareMountpoint resolves mpArg to an absolute path and validates it
// is usable, attempting to clear a stale FUSE mount left by a crashed
// client first.
func PrepareMountpoint(mpArg string) (string, error) {
	mountpoint, err := filepath.Abs(mpArg)
	if err != nil {
		return "", errors.Wrapf(err, "resolving mountpoint path [%s]", mpArg)
	}

	df, err := os.OpenFile(mountpoint, os.O_RDONLY, 0)
	if err != nil {
		glog.Warningf("trying to unmount [%s] as it appears inaccessible", mountpoint)
		if uerr := fuse.Unmount(mountpoint); uerr == nil {
			df, err = os.OpenFile(mountpoint, os.O_RDONLY, 0)
		}
	}
	if err != nil {
		return "", errors.Wrapf(err, "cannot read mountpoint [%s]", mountpoint)
	}
	defer df.Close()

	if names, err := df.Readdirnames(0); err == nil && len(names) > 0 {
		glog.V(1).Infof("mounting onto non-empty dir [%s] with %d children", mountpoint, len(names))
	}

	return mountpoint, nil
}

// Target is a resolved server address and volume name to mount.
type Target struct {
	Host   string // "host:port"
	Volume string
}

// ResolveTarget interprets a "shfs://host[:port]/volume" URL or a bare
// "host[:port]/volume" given explicitly on the command line, or, when
// urlArg is empty, discovers one from a rootMarkerFile walked up from
// mountpoint. Adapted from complyue/jdfs's ResolveJDFS.
func ResolveTarget(urlArg, mountpoint string) (Target, error) {
	if urlArg != "" {
		if !strings.Contains(urlArg, "://") {
			urlArg = "shfs://" + urlArg
		}
		return parseTargetURL(urlArg)
	}

	for atDir := mountpoint; ; {
		markerPath := filepath.Join(atDir, rootMarkerFile)
		content, err := os.ReadFile(markerPath)
		if err == nil {
			root := strings.TrimSpace(string(content))
			target, err := parseTargetURL(root)
			if err != nil {
				return Target{}, errors.Wrapf(err, "parsing root url in [%s]", markerPath)
			}
			return target, nil
		}

		upDir := filepath.Dir(atDir)
		if upDir == atDir {
			break
		}
		atDir = upDir
	}

	return Target{}, errors.Errorf("no host/volume given and no %s marker found above [%s]", rootMarkerFile, mountpoint)
}

func parseTargetURL(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, errors.Wrapf(err, "parsing shfs url [%s]", raw)
	}
	if !u.IsAbs() || u.Scheme != "shfs" {
		return Target{}, errors.Errorf("invalid shfs url [%s]", raw)
	}

	port := u.Port()
	if port == "" {
		port = strconv.Itoa(DefaultPort)
	}

	volume := strings.TrimPrefix(u.Path, "/")
	if volume == "" {
		return Target{}, errors.Errorf("shfs url [%s] names no volume", raw)
	}

	return Target{Host: u.Hostname() + ":" + port, Volume: volume}, nil
}
