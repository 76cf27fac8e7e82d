package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"soin-client/internal/access"
	"soin-client/internal/api"
	"soin-client/internal/listmodel"
	"soin-client/internal/models"
	"soin-client/internal/session"
	"soin-client/pkg/utils"
)

type cli struct {
	client  *api.Client
	session *session.Store
	out     io.Writer
}

func (a *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "submit":
		return a.submit(ctx, args)
	case "submissions":
		return a.submissions(ctx, args)
	case "stats":
		return a.stats(ctx)
	case "pending-doctors":
		return a.pendingDoctors(ctx)
	case "approve-doctor":
		return a.approveDoctor(ctx, args, true)
	case "reject-doctor":
		return a.approveDoctor(ctx, args, false)
	case "export":
		return a.export(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// gate runs the access decision for the screen a command belongs to.
// A redirect to the entry screen means the command is not available to
// the current identity; a redirect elsewhere means the user is already
// past the entry screen.
func (a *cli) gate(requested access.Screen) error {
	decision := access.Decide(a.session.Current(), requested)
	if decision.Action == access.Render {
		return nil
	}
	if decision.Screen == access.ScreenAuth {
		if a.session.LoggedIn() {
			return fmt.Errorf("this command is not available to your account")
		}
		return fmt.Errorf("please log in first")
	}
	return fmt.Errorf("already logged in as %s (%s)",
		a.session.Current().Email, a.session.Current().Role)
}

func (a *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.gate(access.ScreenAuth); err != nil {
		return err
	}

	identity, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return fmt.Errorf("%s", api.Reason(err, "login failed"))
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", identity.Name, identity.Role)
	return nil
}

func (a *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (min 6 chars)")
	name := fs.String("name", "", "full name")
	role := fs.String("role", "patient", "patient or doctor")
	age := fs.Int("age", 0, "age (patients)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.gate(access.ScreenAuth); err != nil {
		return err
	}

	profile := api.RegisterRequest{
		Email:    *email,
		Password: *password,
		Name:     *name,
		Role:     models.Role(*role),
	}
	if *age > 0 {
		profile.Age = age
	}

	identity, err := a.session.Register(ctx, profile)
	if err != nil {
		return fmt.Errorf("%s", api.Reason(err, "registration failed"))
	}
	if identity.Role == models.RoleDoctor {
		fmt.Fprintln(a.out, "Registration successful! Your account is pending admin approval.")
	} else {
		fmt.Fprintln(a.out, "Registration successful!")
	}
	return nil
}

func (a *cli) logout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *cli) whoami() error {
	identity := a.session.Current()
	if identity == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s", identity.Name, identity.Email, identity.Role)
	if identity.ApprovalStatus != "" {
		fmt.Fprintf(a.out, " approval=%s", identity.ApprovalStatus)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *cli) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	imagePath := fs.String("image", "", "path to tongue photo")
	glucose := fs.Float64("glucose", 0, "blood glucose (mg/dL)")
	hba1c := fs.Float64("hba1c", 0, "HbA1c (%)")
	insulin := fs.String("insulin", "", "insulin level (optional)")
	diabetesType := fs.String("type", "", `"Type 1", "Type 2" or "Prediabetes"`)
	symptoms := fs.String("symptoms", "", "comma separated symptoms")
	medications := fs.String("medications", "", "comma separated medications")
	notes := fs.String("notes", "", "free-form notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.gate(access.ScreenPatientDashboard); err != nil {
		return err
	}

	if *imagePath == "" {
		return fmt.Errorf("please provide a tongue image (-image)")
	}
	imageData, err := os.ReadFile(*imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	sub := api.NewSubmission{
		Image:         imageData,
		ImageFilename: *imagePath,
		BloodGlucose:  *glucose,
		HbA1c:         *hba1c,
		InsulinLevel:  utils.ParseFloatPtr(*insulin),
		DiabetesType:  models.DiabetesType(*diabetesType),
		Symptoms:      utils.SplitCSV(*symptoms),
		Medications:   utils.SplitCSV(*medications),
		Notes:         *notes,
	}
	created, err := a.client.CreateSubmission(ctx, a.session.Token(), sub)
	if err != nil {
		// No automatic retry: resubmitting is the user's call.
		return fmt.Errorf("%s", api.Reason(err, "submission failed"))
	}
	fmt.Fprintf(a.out, "Submission saved (%s)\n", created.ID)
	return nil
}

func (a *cli) submissions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submissions", flag.ExitOnError)
	search := fs.String("search", "", "filter by patient name or email")
	diabetesType := fs.String("type", models.DiabetesTypeAll, "filter by diabetes type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	identity := a.session.Current()
	screen := access.ScreenPatientDashboard
	if identity != nil {
		screen = access.DashboardFor(identity.Role)
	}
	if err := a.gate(screen); err != nil {
		return err
	}

	subs, err := a.client.Submissions(ctx, a.session.Token())
	if err != nil {
		return fmt.Errorf("%s", api.Reason(err, "failed to fetch submissions"))
	}

	criteria := models.FilterCriteria{Query: *search, DiabetesType: *diabetesType}
	filtered := listmodel.Filter(subs, criteria)
	if len(filtered) == 0 {
		fmt.Fprintln(a.out, "No submissions found")
		return nil
	}

	if identity.Role == models.RolePatient {
		a.renderSubmissions(listmodel.SortNewestFirst(filtered))
		return nil
	}

	for _, group := range listmodel.GroupByPatient(filtered) {
		fmt.Fprintf(a.out, "%s <%s> age %d — %d submission(s)\n",
			group.PatientName, group.PatientEmail, group.PatientAge, len(group.Submissions))
		a.renderSubmissions(listmodel.SortNewestFirst(group.Submissions))
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *cli) renderSubmissions(subs []models.Submission) {
	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tGLUCOSE\tHBA1C\tINSULIN\tTYPE\tSYMPTOMS\tIMAGE")
	for _, sub := range subs {
		insulin := "-"
		if sub.InsulinLevel != nil {
			insulin = fmt.Sprintf("%g", *sub.InsulinLevel)
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%s\t%s\t%s\t%s\n",
			sub.CreatedAt.Local().Format("2006-01-02 15:04"),
			sub.BloodGlucose,
			sub.HbA1c,
			insulin,
			sub.DiabetesType,
			strings.Join(sub.Symptoms, ", "),
			a.client.ResolveImageURL(sub.TongueImageURL),
		)
	}
	w.Flush()
}

func (a *cli) stats(ctx context.Context) error {
	if err := a.gate(access.ScreenAdminDashboard); err != nil {
		return err
	}
	stats, err := a.client.AdminStats(ctx, a.session.Token())
	if err != nil {
		return fmt.Errorf("%s", api.Reason(err, "failed to fetch stats"))
	}
	fmt.Fprintf(a.out, "Patients:        %d\n", stats.TotalPatients)
	fmt.Fprintf(a.out, "Doctors:         %d\n", stats.TotalDoctors)
	fmt.Fprintf(a.out, "Pending doctors: %d\n", stats.PendingDoctors)
	fmt.Fprintf(a.out, "Submissions:     %d\n", stats.TotalSubmissions)
	return nil
}

func (a *cli) pendingDoctors(ctx context.Context) error {
	if err := a.gate(access.ScreenAdminDashboard); err != nil {
		return err
	}
	pending, err := a.client.PendingDoctors(ctx, a.session.Token())
	if err != nil {
		return fmt.Errorf("%s", api.Reason(err, "failed to fetch pending doctors"))
	}
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No pending doctors")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL")
	for _, doc := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\n", doc.ID, doc.Name, doc.Email)
	}
	return w.Flush()
}

func (a *cli) approveDoctor(ctx context.Context, args []string, approve bool) error {
	name := "approve-doctor"
	if !approve {
		name = "reject-doctor"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "doctor account id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.gate(access.ScreenAdminDashboard); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("please provide a doctor id (-id)")
	}

	if err := a.client.ApproveDoctor(ctx, a.session.Token(), *id, approve); err != nil {
		return fmt.Errorf("%s", api.Reason(err, "failed to update doctor status"))
	}
	if approve {
		fmt.Fprintln(a.out, "Doctor approved!")
	} else {
		fmt.Fprintln(a.out, "Doctor rejected")
	}
	return nil
}

func (a *cli) export(ctx context.Context) error {
	if err := a.gate(access.ScreenAdminDashboard); err != nil {
		return err
	}

	filename := fmt.Sprintf("soin_export_%s.zip", time.Now().Format("2006-01-02"))
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := a.client.ExportData(ctx, a.session.Token(), f)
	if err != nil {
		os.Remove(filename)
		return fmt.Errorf("%s", api.Reason(err, "export failed"))
	}
	fmt.Fprintf(a.out, "Exported %d bytes to %s\n", n, filename)
	return nil
}
