package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rtstat-tools/rtstat/pkg/inventory"
	"github.com/rtstat-tools/rtstat/pkg/publish"
	"github.com/rtstat-tools/rtstat/pkg/router"
	"github.com/rtstat-tools/rtstat/pkg/session"
	"github.com/rtstat-tools/rtstat/pkg/util"
)

const defaultTimeoutMS = 5000

var (
	modelFlag     string
	hostFlag      string
	portFlag      int
	usernameFlag  string
	passwordFlag  string
	timeoutFlag   int
	transportFlag string
	inventoryFlag string
	redisFlag     string
)

var pollCmd = &cobra.Command{
	Use:   "poll [router-name]",
	Short: "Poll a router once and print the JSON snapshot",
	Long: `Poll opens a session to the router, runs the profile's diagnostic
commands, and prints the merged snapshot as JSON on stdout. With a
router-name argument the connection details come from the inventory file;
otherwise from flags (and saved settings defaults).

Pass -x - to be prompted for the password instead of putting it on the
command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPoll,
}

func init() {
	flags := pollCmd.Flags()
	flags.StringVarP(&modelFlag, "router", "m", "", "Router model to assume (see 'rtstat models')")
	flags.StringVarP(&hostFlag, "host", "r", "", "Router address to connect to")
	flags.IntVarP(&portFlag, "port", "p", 0, "Router port (default 23 for telnet, 22 for ssh)")
	flags.StringVarP(&usernameFlag, "username", "u", "", "Username to authenticate with (default per model)")
	flags.StringVarP(&passwordFlag, "password", "x", "", "Password to authenticate with ('-' to prompt)")
	flags.IntVarP(&timeoutFlag, "timeout", "t", defaultTimeoutMS, "Network timeout in milliseconds")
	flags.StringVar(&transportFlag, "transport", "", "Transport: telnet (default) or ssh")
	flags.StringVar(&inventoryFlag, "inventory", "", "Router inventory YAML file")
	flags.StringVar(&redisFlag, "redis", "", "Also publish the snapshot to this Redis address")
}

func runPoll(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(args)
	if err != nil {
		return err
	}

	profile, err := router.New(target.Model)
	if err != nil {
		return err
	}

	username := target.Username
	if username == "" {
		username = profile.DefaultUsername()
	}
	password, err := resolvePassword(target.Password)
	if err != nil {
		return err
	}
	if password == "" {
		password = profile.DefaultPassword()
	}

	timeoutMS := target.TimeoutMS
	if timeoutMS == 0 {
		timeoutMS = defaultTimeoutMS
	}
	timeout := time.Duration(timeoutMS) * time.Millisecond

	util.Infof("polling %s at %s", target.Model, target.Host)

	var transport session.Transport
	switch target.Transport {
	case "", "telnet":
		transport, err = session.DialTelnet(target.Host, target.Port, timeout)
	case "ssh":
		transport, err = session.DialSSH(target.Host, target.Port, username, password, timeout)
	default:
		return fmt.Errorf("unknown transport %q (want telnet or ssh)", target.Transport)
	}
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", target.Host, err)
	}

	snap, err := router.Poll(transport, profile, username, password)
	if err != nil {
		return err
	}

	data, err := snap.JSON()
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if redisFlag != "" {
		pub := publish.New(redisFlag)
		defer pub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := pub.Publish(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

// resolveTarget builds the connection definition either from an inventory
// entry (when a router name argument is given) or from flags with saved
// settings filling the gaps.
func resolveTarget(args []string) (*inventory.Router, error) {
	if len(args) == 1 {
		path := inventoryFlag
		if path == "" {
			path = userSettings.InventoryPath
		}
		if path == "" {
			return nil, fmt.Errorf("polling by name needs an inventory: use --inventory or 'rtstat settings set inventory <path>'")
		}
		inv, err := inventory.Load(path)
		if err != nil {
			return nil, err
		}
		return inv.Get(args[0])
	}

	target := &inventory.Router{
		Model:     modelFlag,
		Host:      hostFlag,
		Port:      portFlag,
		Transport: transportFlag,
		Username:  usernameFlag,
		Password:  passwordFlag,
		TimeoutMS: timeoutFlag,
	}
	if target.Model == "" {
		target.Model = userSettings.DefaultModel
	}
	if target.Host == "" {
		target.Host = userSettings.DefaultHost
	}
	if target.Model == "" {
		return nil, fmt.Errorf("router model required: use -m <model> (see 'rtstat models')")
	}
	if target.Host == "" {
		return nil, fmt.Errorf("router address required: use -r <host>")
	}
	return target, nil
}

// resolvePassword expands the "-" placeholder into an interactive prompt.
func resolvePassword(password string) (string, error) {
	if password != "-" {
		return password, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("password prompt requested but stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(line), nil
}
