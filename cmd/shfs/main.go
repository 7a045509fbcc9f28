// Command shfs is the shfs client: it can list and query a running
// server, and mount one of its volumes over FUSE.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/spf13/cobra"

	"github.com/JMARyA/shfs/pkg/cli"
	"github.com/JMARyA/shfs/pkg/client"
	"github.com/JMARyA/shfs/pkg/fsbridge"
)

var rootCmd = &cobra.Command{
	Use:   "shfs",
	Short: "shfs client",
}

var listCmd = &cobra.Command{
	Use:   "list HOST:PORT",
	Short: "List a server's discoverable volumes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := client.DialServer(args[0])
		if err != nil {
			return err
		}
		defer sc.Close()

		names, err := sc.ListVolumes()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info HOST:PORT",
	Short: "Print a server's name and version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := client.DialServer(args[0])
		if err != nil {
			return err
		}
		defer sc.Close()

		info, err := sc.ServerInfo()
		if err != nil {
			return err
		}
		fmt.Printf("%s (version %s)\n", info.Name, info.Version)
		return nil
	},
}

var mountURL string

var mountCmd = &cobra.Command{
	Use:   "mount [HOST/VOLUME] MOUNTPOINT",
	Short: "Mount a volume over FUSE, blocking until unmounted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var urlArg, mountpointArg string
		if len(args) == 2 {
			urlArg, mountpointArg = args[0], args[1]
		} else {
			mountpointArg = args[0]
		}
		if mountURL != "" {
			urlArg = mountURL
		}

		mountpoint, err := cli.PrepareMountpoint(mountpointArg)
		if err != nil {
			return err
		}

		target, err := cli.ResolveTarget(urlArg, mountpoint)
		if err != nil {
			return err
		}

		sc, err := client.DialServer(target.Host)
		if err != nil {
			return err
		}
		defer sc.Close()

		volID, err := sc.LookupVolume(target.Volume)
		if err != nil {
			return err
		}

		vc, err := client.DialVolume(target.Host, volID)
		if err != nil {
			return err
		}
		defer vc.Close()

		fs := fsbridge.New(vc)
		mfs, err := fuse.Mount(mountpoint, fuseutil.NewFileSystemServer(fs), &fuse.MountConfig{})
		if err != nil {
			return err
		}

		return mfs.Join(context.Background())
	},
}

func init() {
	mountCmd.Flags().StringVarP(&mountURL, "url", "u", "", "shfs://host[:port]/volume (overrides positional form)")

	rootCmd.AddCommand(listCmd, infoCmd, mountCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("%+v", err)
		os.Exit(1)
	}
}
