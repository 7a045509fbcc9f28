package server

import (
	"net"

	"github.com/JMARyA/shfs/pkg/config"
	"github.com/JMARyA/shfs/pkg/errors"
	"github.com/JMARyA/shfs/pkg/volume"
)

// BuildVolumes opens an Engine for every configured volume, in order, so
// the resulting slice's indices are the server's stable volume_id space.
func BuildVolumes(cfg config.ServerConfig) ([]Volume, error) {
	volumes := make([]Volume, 0, len(cfg.Volumes))
	for _, vc := range cfg.Volumes {
		eng, err := volume.New(volume.Config{
			Name:         vc.Name,
			Description:  vc.Description,
			Root:         vc.Root,
			Discoverable: vc.Discoverable,
			Public:       vc.Public,
			ReadOnly:     vc.ReadOnly,
			TrashEnabled: vc.TrashEnabled,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "opening volume [%s]", vc.Name)
		}
		volumes = append(volumes, Volume{Engine: eng})
	}
	return volumes, nil
}

// Run loads cfgPath, opens every configured volume and serves on addr
// until the listener fails or is closed.
func Run(cfgPath, addr string, compress bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return errors.Wrapf(err, "loading config [%s]", cfgPath)
	}

	volumes, err := BuildVolumes(cfg)
	if err != nil {
		return err
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return errors.Wrapf(err, "resolving listen address [%s]", addr)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return errors.Wrapf(err, "listening on [%s]", addr)
	}
	defer conn.Close()

	d := NewDispatcher(conn, cfg.Name, volumes, compress)
	return d.Serve()
}
