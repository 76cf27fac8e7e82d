// Command soin is the terminal front end of the SOIN platform: patients
// upload tongue photos with diabetes lab values, doctors review
// per-patient histories, the admin approves doctors and exports data.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"soin-client/internal/api"
	"soin-client/internal/config"
	"soin-client/internal/session"
)

func main() {
	log.SetFlags(0)

	// 1. Load env
	cfg := config.Load()

	// 2. Wire the client core
	client := api.New(cfg.APIBase)
	sess := session.New(client, session.NewFileTokenStore(cfg.TokenFile))
	sess.SetLogger(log.New(os.Stderr, "soin: ", 0))

	// 3. Restore the previous session. This must finish before any
	// gate decision is made.
	ctx := context.Background()
	if err := sess.Restore(ctx); err != nil {
		log.Fatalf("soin: %v", err)
	}

	// 4. Dispatch
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	app := &cli{client: client, session: sess, out: os.Stdout}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("soin: %v", err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: soin <command> [flags]

Account:
  login             -email -password
  register          -email -password -name -role [-age]
  logout
  whoami

Patient:
  submit            -image -glucose -hba1c -type [-insulin] [-symptoms] [-medications] [-notes]
  submissions       [-search] [-type]

Doctor:
  submissions       [-search] [-type]   (grouped by patient)

Admin:
  stats
  pending-doctors
  approve-doctor    -id
  reject-doctor     -id
  export
`)
}
