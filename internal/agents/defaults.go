package agents

import (
	"strings"

	"modplan/internal/signal"
)

// DefaultAgents returns the full swarm for a target platform version. The
// returned slice order is cosmetic only: agents are independent, and the
// moderator's deterministic merge is the sole source of cross-agent
// interaction.
//
// Legacy 5.* platforms predate the website builder stack, so the website
// agent recommends the old webshop connector modules there.
func DefaultAgents(platformVersion string) []Agent {
	legacy := isLegacy5(platformVersion)

	websiteModules := []ModuleSpec{
		{ModuleID: "website"},
		{ModuleID: "website_sale", Settings: map[string]string{"checkout_guest": "enabled"}},
		{ModuleID: "payment"},
	}
	if legacy {
		websiteModules = []ModuleSpec{
			{ModuleID: "sale_management"},
			{ModuleID: "delivery"},
			{ModuleID: "webshop_connector"},
		}
	}

	return []Agent{
		NewSignalAgent(SignalAgentConfig{
			Name:           "sales_agent",
			Domain:         signal.DomainSales,
			BaseConfidence: 0.65,
			Rules: []Rule{
				{SignalDomain: signal.DomainSales, SignalKey: "crm", Modules: []ModuleSpec{
					{ModuleID: "crm", Settings: map[string]string{"lead_mining": "enabled"}},
				}},
				{SignalDomain: signal.DomainSales, SignalKey: "sales", Modules: []ModuleSpec{
					{ModuleID: "sale_management"},
					{ModuleID: "crm"},
				}},
				{SignalDomain: signal.DomainEcommerce, SignalKey: "ecommerce", Modules: []ModuleSpec{
					{ModuleID: "sale_management"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "website_agent",
			Domain:         signal.DomainEcommerce,
			BaseConfidence: 0.7,
			Rules: []Rule{
				{SignalDomain: signal.DomainEcommerce, SignalKey: "ecommerce", Modules: websiteModules},
				{SignalDomain: signal.DomainInventory, SignalKey: "shipping", Modules: []ModuleSpec{
					{ModuleID: "delivery"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "inventory_agent",
			Domain:         signal.DomainInventory,
			BaseConfidence: 0.7,
			Rules: []Rule{
				{SignalDomain: signal.DomainInventory, SignalKey: "inventory", Modules: []ModuleSpec{
					{ModuleID: "stock", Settings: map[string]string{"tracking": "lots"}},
				}},
				{SignalDomain: signal.DomainInventory, SignalKey: "shipping", Modules: []ModuleSpec{
					{ModuleID: "delivery"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "purchase_agent",
			Domain:         signal.DomainPurchase,
			BaseConfidence: 0.6,
			Rules: []Rule{
				{SignalDomain: signal.DomainPurchase, SignalKey: "purchase", Modules: []ModuleSpec{
					{ModuleID: "purchase"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "accounting_agent",
			Domain:         signal.DomainFinance,
			BaseConfidence: 0.75,
			Rules: []Rule{
				{SignalDomain: signal.DomainFinance, SignalKey: "accounting", Modules: []ModuleSpec{
					{ModuleID: "account", Settings: map[string]string{"fiscal_localization": "auto"}},
				}},
				{SignalDomain: signal.DomainFinance, SignalKey: "finance", Modules: []ModuleSpec{
					{ModuleID: "account"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "manufacturing_agent",
			Domain:         signal.DomainManufacturing,
			BaseConfidence: 0.6,
			Rules: []Rule{
				{SignalDomain: signal.DomainManufacturing, SignalKey: "manufacturing", Modules: []ModuleSpec{
					{ModuleID: "mrp"},
				}},
				{SignalDomain: signal.DomainManufacturing, SignalKey: "quality", Modules: []ModuleSpec{
					{ModuleID: "quality"},
				}},
				{SignalDomain: signal.DomainManufacturing, SignalKey: "maintenance", Modules: []ModuleSpec{
					{ModuleID: "maintenance"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "hr_agent",
			Domain:         signal.DomainHR,
			BaseConfidence: 0.55,
			Rules: []Rule{
				{SignalDomain: signal.DomainHR, SignalKey: "hr", Modules: []ModuleSpec{
					{ModuleID: "hr"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "project_agent",
			Domain:         signal.DomainProject,
			BaseConfidence: 0.55,
			Rules: []Rule{
				{SignalDomain: signal.DomainProject, SignalKey: "project", Modules: []ModuleSpec{
					{ModuleID: "project"},
					{ModuleID: "hr_timesheet"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "marketing_agent",
			Domain:         signal.DomainMarketing,
			BaseConfidence: 0.5,
			Rules: []Rule{
				{SignalDomain: signal.DomainMarketing, SignalKey: "marketing", Modules: []ModuleSpec{
					{ModuleID: "marketing_automation"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "subscription_agent",
			Domain:         signal.DomainSales,
			BaseConfidence: 0.6,
			Rules: []Rule{
				{SignalDomain: signal.DomainSales, SignalKey: "subscriptions", Modules: []ModuleSpec{
					{ModuleID: "sale_subscription"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "support_agent",
			Domain:         signal.DomainService,
			BaseConfidence: 0.55,
			Rules: []Rule{
				{SignalDomain: signal.DomainService, SignalKey: "support", Modules: []ModuleSpec{
					{ModuleID: "helpdesk"},
				}},
			},
		}),
		NewSignalAgent(SignalAgentConfig{
			Name:           "pos_agent",
			Domain:         signal.DomainSales,
			BaseConfidence: 0.6,
			Rules: []Rule{
				{SignalDomain: signal.DomainSales, SignalKey: "pos", Modules: []ModuleSpec{
					{ModuleID: "point_of_sale"},
				}},
			},
		}),
		NewRiskAgent("integration_agent", signal.DomainRisk, []string{"integration"},
			"Detected integration considerations; plan connector scoping early."),
		NewRiskAgent("systems_agent", signal.DomainIntegrations, []string{"systems_mentioned"},
			"External systems named in interview; each needs a connector or migration decision."),
		NewRiskAgent("migration_agent", signal.DomainRisk, []string{"data_migration"},
			"Detected data migration considerations; budget for extraction and cleansing."),
		NewRiskAgent("outsourced_manufacturing_agent", signal.DomainRisk, []string{"outsourced_manufacturing"},
			"Detected outsourced manufacturing; subcontracting flows need explicit design.").
			FlagsModules("mrp"),
	}
}

// isLegacy5 reports whether the platform version is the legacy 5.* line.
func isLegacy5(version string) bool {
	version = strings.TrimSpace(version)
	return version == "5" || strings.HasPrefix(version, "5.")
}
