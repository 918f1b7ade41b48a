package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/materials-commons/mcvr/pkg/mcvrclient"
	"github.com/spf13/cobra"
)

var (
	clientURL   string
	clientToken string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Talk to a running mcvrd",
}

var clientLookupCmd = &cobra.Command{
	Use:   "lookup <path>",
	Short: "Resolve a logical path such as collection/data/mapped/file.txt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := newClient().Lookup(args[0], false)
		if err != nil {
			return err
		}

		fmt.Println(string(doc))
		return nil
	},
}

var clientLsCmd = &cobra.Command{
	Use:   "ls <folder-id>",
	Short: "List the folders and items in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		folders, err := c.ListFolders(args[0], mcvrclient.ListOptions{})
		if err != nil {
			return err
		}

		items, err := c.ListItems(args[0], mcvrclient.ListOptions{})
		if err != nil {
			return err
		}

		for _, f := range folders {
			fmt.Printf("%-8s %12s  %s/  %s\n", "folder", "-", f.Name, f.ID)
		}

		for _, i := range items {
			fmt.Printf("%-8s %12d  %s  %s\n", "item", i.Size, i.Name, i.ID)
		}

		return nil
	},
}

var clientUploadCmd = &cobra.Command{
	Use:   "upload <folder-id> <file>",
	Short: "Upload a local file into a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil {
			return err
		}

		file, err := newClient().Upload(args[0], filepath.Base(args[1]), f, fi.Size())
		if err != nil {
			return err
		}

		return printJSON(file)
	},
}

var clientDownloadCmd = &cobra.Command{
	Use:   "download <file-id> <dest>",
	Short: "Download a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}

		n, err := newClient().Download(args[0], f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			return err
		}

		fmt.Printf("Wrote %d bytes to %s\n", n, args[1])
		return nil
	},
}

func newClient() *mcvrclient.Client {
	return mcvrclient.New(clientURL, clientToken)
}

func init() {
	clientCmd.AddCommand(clientLookupCmd, clientLsCmd, clientUploadCmd, clientDownloadCmd)

	clientCmd.PersistentFlags().StringVar(&clientURL, "url", envOr("MCVR_URL", "http://localhost:1354"), "Server URL")
	clientCmd.PersistentFlags().StringVar(&clientToken, "token", os.Getenv("MCVR_TOKEN"), "API token")
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
