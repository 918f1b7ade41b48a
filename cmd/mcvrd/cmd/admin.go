package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/materials-commons/mcvr/pkg/config"
	"github.com/materials-commons/mcvr/pkg/mcdb"
	"github.com/materials-commons/mcvr/pkg/mcdb/mcmodel"
	"github.com/materials-commons/mcvr/pkg/mcdb/stor"
	"github.com/materials-commons/mcvr/pkg/vr"
	"github.com/spf13/cobra"
)

// cliAdmin is the identity admin subcommands act as. Anyone who can run
// them already holds the database credentials.
var cliAdmin = &mcmodel.User{Login: "mcvrd", Admin: true}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage users, collections, folders, mappings and grants",
}

var adminUserCreateCmd = &cobra.Command{
	Use:   "user-create <login>",
	Short: "Create a user and print its API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		isAdmin, _ := cmd.Flags().GetBool("admin")
		email, _ := cmd.Flags().GetString("email")
		user, err := mustOpenStors().UserStor.CreateUser(&mcmodel.User{Login: args[0], Email: email, Admin: isAdmin})
		if err != nil {
			return err
		}

		return printJSON(struct {
			*mcmodel.User
			ApiToken string `json:"apiToken"`
		}{user, user.ApiToken})
	},
}

var adminCollectionCreateCmd = &cobra.Command{
	Use:   "collection-create <name>",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stors := mustOpenStors()
		creator, err := creatorFromFlags(cmd, stors)
		if err != nil {
			return err
		}

		public, _ := cmd.Flags().GetBool("public")
		collection, err := stors.CollectionStor.CreateCollection(&mcmodel.Collection{Name: args[0], CreatorID: creator.ID, Public: public})
		if err != nil {
			return err
		}

		return printJSON(collection)
	},
}

var adminFolderCreateCmd = &cobra.Command{
	Use:   "folder-create <name>",
	Short: "Create a native folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stors := mustOpenStors()
		creator, err := creatorFromFlags(cmd, stors)
		if err != nil {
			return err
		}

		parentID, _ := cmd.Flags().GetString("parent-id")
		parentType, _ := cmd.Flags().GetString("parent-type")
		public, _ := cmd.Flags().GetBool("public")

		folder := &mcmodel.Folder{
			ParentID:         parentID,
			ParentCollection: parentType,
			CreatorID:        creator.ID,
			Public:           public,
		}
		folder.SetName(args[0])

		created, err := stors.FolderStor.CreateFolder(folder)
		if err != nil {
			return err
		}

		return printJSON(created)
	},
}

var adminMappingSetCmd = &cobra.Command{
	Use:   "mapping-set <folder-id> [fs-path]",
	Short: "Map a native folder to a directory, or unmap it with --unmap",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unmap, _ := cmd.Flags().GetBool("unmap")
		fsPath := ""
		if len(args) == 2 {
			fsPath = args[1]
		}

		if !unmap && fsPath == "" {
			return fmt.Errorf("fs-path is required unless --unmap is given")
		}

		stors := mustOpenStors()
		engine := vr.NewEngine(stors, vr.OptionsFromConfig(config.GetConfig()))
		folder, err := engine.SetMapping(cliAdmin, args[0], !unmap, fsPath)
		if err != nil {
			return err
		}

		return printJSON(folder)
	},
}

var adminGrantCmd = &cobra.Command{
	Use:   "grant <folder-id> <login> <read|write|admin>",
	Short: "Grant a user access to a folder",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := mcmodel.ParseAccessLevel(args[2])
		if err != nil {
			return err
		}

		stors := mustOpenStors()
		user, err := stors.UserStor.GetUserByLogin(args[1])
		if err != nil {
			return fmt.Errorf("no such user %s: %w", args[1], err)
		}

		if err := stors.FolderStor.GrantAccess(args[0], user.ID, level); err != nil {
			return err
		}

		log.Infof("Granted %s %s access to folder %s", user.Login, level, args[0])
		return nil
	},
}

func mustOpenStors() *stor.Stors {
	c := config.MustLoadFromMCDotenv()
	return stor.NewGormStors(mcdb.MustConnectToDB(c))
}

func creatorFromFlags(cmd *cobra.Command, stors *stor.Stors) (*mcmodel.User, error) {
	login, _ := cmd.Flags().GetString("creator")
	if login == "" {
		return nil, fmt.Errorf("--creator is required")
	}

	user, err := stors.UserStor.GetUserByLogin(login)
	if err != nil {
		return nil, fmt.Errorf("no such user %s: %w", login, err)
	}

	return user, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	adminCmd.AddCommand(adminUserCreateCmd, adminCollectionCreateCmd, adminFolderCreateCmd, adminMappingSetCmd, adminGrantCmd)

	adminUserCreateCmd.Flags().Bool("admin", false, "Make the user a site admin")
	adminUserCreateCmd.Flags().String("email", "", "Email address")

	adminCollectionCreateCmd.Flags().String("creator", "", "Login of the creating user")
	adminCollectionCreateCmd.Flags().Bool("public", false, "Make the collection public")

	adminFolderCreateCmd.Flags().String("creator", "", "Login of the creating user")
	adminFolderCreateCmd.Flags().String("parent-id", "", "Parent id")
	adminFolderCreateCmd.Flags().String("parent-type", mcmodel.ParentCollectionCollection, "Parent type: folder, collection or user")
	adminFolderCreateCmd.Flags().Bool("public", false, "Make the folder public")
	_ = adminFolderCreateCmd.MarkFlagRequired("parent-id")

	adminMappingSetCmd.Flags().Bool("unmap", false, "Remove the mapping")
}
