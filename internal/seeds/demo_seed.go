package seeds

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// DemoSeeder seeds a demo organization with customers, message templates,
// and a default follow-up workflow. Rows use fixed IDs so re-running the
// seeder is harmless.
type DemoSeeder struct {
	db *sql.DB
}

// NewDemoSeeder creates a new demo seeder
func NewDemoSeeder(db *sql.DB) *DemoSeeder {
	return &DemoSeeder{db: db}
}

var (
	demoOrgID = uuid.MustParse("11111111-0000-0000-0000-000000000001")

	demoCustomerTanakaID = uuid.MustParse("22222222-0000-0000-0000-000000000001")
	demoCustomerSatoID   = uuid.MustParse("22222222-0000-0000-0000-000000000002")
	demoCustomerSuzukiID = uuid.MustParse("22222222-0000-0000-0000-000000000003")

	demoTemplateInitialID   = uuid.MustParse("33333333-0000-0000-0000-000000000001")
	demoTemplateFollowUpID  = uuid.MustParse("33333333-0000-0000-0000-000000000002")
	demoTemplateLastCallID  = uuid.MustParse("33333333-0000-0000-0000-000000000003")
	demoTemplateLineHelloID = uuid.MustParse("33333333-0000-0000-0000-000000000004")

	demoWorkflowID = uuid.MustParse("44444444-0000-0000-0000-000000000001")
)

// SeedAll seeds the organization, customers, templates, and workflow
func (s *DemoSeeder) SeedAll(ctx context.Context) error {
	if err := s.seedOrganization(ctx); err != nil {
		return fmt.Errorf("failed to seed organization: %w", err)
	}
	if err := s.seedCustomers(ctx); err != nil {
		return fmt.Errorf("failed to seed customers: %w", err)
	}
	if err := s.seedTemplates(ctx); err != nil {
		return fmt.Errorf("failed to seed templates: %w", err)
	}
	if err := s.seedWorkflow(ctx); err != nil {
		return fmt.Errorf("failed to seed workflow: %w", err)
	}
	return nil
}

func (s *DemoSeeder) seedOrganization(ctx context.Context) error {
	query := `
		INSERT INTO organizations (id, name, address, phone, business_hours, line_add_url, license_number, store_name, utc_offset_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		demoOrgID,
		"Sakura Estate Co.",
		"1-2-3 Ebisu, Shibuya-ku, Tokyo",
		"03-1234-5678",
		"10:00-19:00 (closed Wed)",
		"https://line.me/R/ti/p/@sakura-estate",
		"Tokyo Governor (3) No. 98765",
		"Sakura Estate Ebisu Branch",
		540,
	)
	if err != nil {
		return err
	}

	log.Println("Seeded organization: Sakura Estate Co.")
	return nil
}

func (s *DemoSeeder) seedCustomers(ctx context.Context) error {
	customers := []struct {
		id       uuid.UUID
		name     string
		email    string
		phone    string
		lineID   string
		property string
	}{
		{demoCustomerTanakaID, "Tanaka Yuki", "tanaka@example.com", "090-1111-2222", "", "Ebisu Heights 302"},
		{demoCustomerSatoID, "Sato Haruto", "sato@example.com", "", "U1234567890abcdef", "Daikanyama Court 105"},
		{demoCustomerSuzukiID, "Suzuki Mei", "", "080-3333-4444", "", "Nakameguro Terrace 201"},
	}

	query := `
		INSERT INTO customers (id, organization_id, name, email, phone, line_user_id, property_name, pipeline_status, is_need_action, last_active_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, 'new_inquiry', false, NOW())
		ON CONFLICT (id) DO NOTHING`

	for _, c := range customers {
		if _, err := s.db.ExecContext(ctx, query,
			c.id, demoOrgID, c.name, c.email, c.phone, c.lineID, c.property,
		); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d customers", len(customers))
	return nil
}

func (s *DemoSeeder) seedTemplates(ctx context.Context) error {
	templates := []struct {
		id      uuid.UUID
		name    string
		subject string
		body    string
	}{
		{
			demoTemplateInitialID,
			"Initial inquiry response",
			"Thank you for your inquiry about {{property_name}}",
			"{{customer_name}} 様\n\nお問い合わせありがとうございます。{{property_name}}についてご案内いたします。\n{{property_url}}\n\nご内見のご希望がございましたらお気軽にご返信ください。\n\n{{store_name}}\n{{store_phone}}\n営業時間: {{store_hours}}",
		},
		{
			demoTemplateFollowUpID,
			"Day-1 follow-up",
			"Following up on {{property_name}}",
			"{{customer_name}} 様\n\n昨日ご案内した{{property_name}}はいかがでしたでしょうか。\n似た条件のお部屋もご紹介できますので、ぜひご返信ください。\n\n担当: {{staff_name}}\n{{store_name}}",
		},
		{
			demoTemplateLastCallID,
			"Final follow-up",
			"Still looking? We can help",
			"{{customer_name}} 様\n\nその後お部屋探しの状況はいかがでしょうか。\nLINEでのご相談も受け付けています: {{line_add_url}}\n\n{{company_name}}\n{{license_number}}",
		},
		{
			demoTemplateLineHelloID,
			"LINE hello",
			"",
			"{{customer_name}}様、{{store_name}}です!{{property_name}}のご内見予約はこちらのトークからどうぞ。",
		},
	}

	query := `
		INSERT INTO message_templates (id, organization_id, name, subject, body)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (id) DO NOTHING`

	for _, t := range templates {
		if _, err := s.db.ExecContext(ctx, query,
			t.id, demoOrgID, t.name, t.subject, t.body,
		); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d message templates", len(templates))
	return nil
}

func (s *DemoSeeder) seedWorkflow(ctx context.Context) error {
	workflowQuery := `
		INSERT INTO workflows (id, organization_id, name, description, is_active, is_default)
		VALUES ($1, $2, $3, $4, true, true)
		ON CONFLICT (id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, workflowQuery,
		demoWorkflowID, demoOrgID,
		"Standard inquiry follow-up",
		"Immediate response, then day-1 and day-3 email follow-ups",
	); err != nil {
		return err
	}

	steps := []struct {
		position    int
		channel     string
		templateID  uuid.UUID
		daysAfter   int
		timeOfDay   string
		isImmediate bool
	}{
		{0, "email", demoTemplateInitialID, 0, "10:00", true},
		{1, "email", demoTemplateFollowUpID, 1, "10:00", false},
		{2, "email", demoTemplateLastCallID, 3, "19:00", false},
	}

	stepQuery := `
		INSERT INTO workflow_steps (id, workflow_id, position, channel, template_id, days_after, time_of_day, is_immediate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (workflow_id, position) DO NOTHING`

	for _, st := range steps {
		if _, err := s.db.ExecContext(ctx, stepQuery,
			uuid.New(), demoWorkflowID, st.position, st.channel, st.templateID,
			st.daysAfter, st.timeOfDay, st.isImmediate,
		); err != nil {
			return err
		}
	}

	log.Printf("Seeded workflow with %d steps", len(steps))
	return nil
}

// Stats prints row counts for the seeded tables
func (s *DemoSeeder) Stats(ctx context.Context) error {
	tables := []string{"organizations", "customers", "message_templates", "workflows", "workflow_steps", "workflow_runs"}

	log.Println("Current data:")
	for _, table := range tables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}
		log.Printf("  %-20s %d", table, count)
	}
	return nil
}

// Verify checks that the demo workflow is startable
func (s *DemoSeeder) Verify(ctx context.Context) error {
	var stepCount int
	query := `
		SELECT COUNT(*)
		FROM workflow_steps ws
		JOIN workflows w ON w.id = ws.workflow_id
		WHERE w.id = $1 AND w.is_active`

	if err := s.db.QueryRowContext(ctx, query, demoWorkflowID).Scan(&stepCount); err != nil {
		return fmt.Errorf("failed to verify workflow: %w", err)
	}
	if stepCount == 0 {
		return fmt.Errorf("demo workflow has no steps or is inactive")
	}

	var missing int
	templateQuery := `
		SELECT COUNT(*)
		FROM workflow_steps ws
		LEFT JOIN message_templates t ON t.id = ws.template_id
		WHERE ws.workflow_id = $1 AND t.id IS NULL`

	if err := s.db.QueryRowContext(ctx, templateQuery, demoWorkflowID).Scan(&missing); err != nil {
		return fmt.Errorf("failed to verify templates: %w", err)
	}
	if missing > 0 {
		return fmt.Errorf("%d workflow steps reference missing templates", missing)
	}

	log.Printf("Demo workflow verified: %d steps, all templates present", stepCount)
	return nil
}
