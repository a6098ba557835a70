package signal

// BusinessDomain groups signal keys for agent ownership and audit reporting.
const (
	DomainSales         = "sales"
	DomainEcommerce     = "ecommerce"
	DomainInventory     = "inventory"
	DomainPurchase      = "purchase"
	DomainFinance       = "finance"
	DomainManufacturing = "manufacturing"
	DomainHR            = "hr"
	DomainProject       = "project"
	DomainService       = "service"
	DomainMarketing     = "marketing"
	DomainCompany       = "company"
	DomainIntegrations  = "integrations"
	DomainRisk          = "risk"
)

// patternGroup defines one detection signal: the key it produces, the domain
// it belongs to, and the lowercase phrases that trigger it.
type patternGroup struct {
	Domain   string
	Key      string
	Patterns []string
}

// patternGroups is the single source of truth for text-based signal
// detection. Order matters only for artifact readability; detection results
// are independent of it.
var patternGroups = []patternGroup{
	{DomainEcommerce, "ecommerce", []string{
		"ecommerce", "e-commerce", "online store", "webshop",
		"online sales", "web shop", "online shop", "shopify",
	}},
	{DomainEcommerce, "website", []string{
		"website", "web presence", "landing page",
	}},
	{DomainSales, "subscriptions", []string{
		"subscription", "recurring", "monthly plan", "annual plan",
		"renewal", "recurring revenue", "saas",
	}},
	{DomainManufacturing, "manufacturing", []string{
		"manufacturing", "manufacture", "production", "assembly", "bom",
		"bill of materials", "make to order", "we manufacture",
		"we produce", "factory", "fabricat",
	}},
	{DomainRisk, "outsourced_manufacturing", []string{
		"third-party manufacturer", "contract manufacturer",
		"co-manufacturer", "outsourced production",
		"external manufacturer", "subcontract",
	}},
	{DomainInventory, "inventory", []string{
		"inventory", "warehouse", "stock", "fulfillment",
		"logistics", "storage", "shelf", "bin", "pick and pack",
		"fifo", "lifo", "valuation",
	}},
	{DomainPurchase, "purchase", []string{
		"supplier", "vendor", "purchase order", "procure",
		"procurement", "buying", "sourcing", "reorder",
	}},
	{DomainFinance, "accounting", []string{
		"accounting", "bookkeeping", "general ledger",
		"accounts payable", "accounts receivable", "financial reporting",
		"chart of accounts", "reconciliation", "quickbooks", "xero",
	}},
	{DomainFinance, "finance", []string{
		"invoice", "invoicing", "payment", "tax", "vat",
		"payable", "receivable", "budget", "p&l",
		"profit and loss", "balance sheet",
	}},
	{DomainSales, "crm", []string{
		"crm", "lead", "opportunity", "pipeline", "sales team",
		"customer relationship", "prospect", "lead nurturing", "salesforce",
		"hubspot",
	}},
	{DomainSales, "sales", []string{
		"sales", "selling", "quotation", "pricing", "b2b", "b2c",
		"wholesale", "retail", "deal", "proposal", "quote",
	}},
	{DomainProject, "project", []string{
		"project", "timesheet", "billable", "milestone",
		"deliverable", "client work", "consultant",
	}},
	{DomainHR, "hr", []string{
		"employee", "payroll", "recruit", "hiring", "staff",
		"workforce", "human resources", "fte", "leave",
		"vacation", "attendance", "department",
	}},
	{DomainService, "support", []string{
		"support", "helpdesk", "ticket", "customer service",
		"issue tracking", "service desk",
	}},
	{DomainInventory, "shipping", []string{
		"shipping", "carrier", "delivery", "dispatch",
		"courier", "freight", "tracking number",
	}},
	{DomainSales, "pos", []string{
		"point of sale", "pos system", "retail store",
		"cash register", "checkout counter",
	}},
	{DomainManufacturing, "quality", []string{
		"quality control", "inspection", "qc",
		"quality assurance", "quality check",
	}},
	{DomainManufacturing, "maintenance", []string{
		"maintenance", "equipment", "repair",
		"preventive maintenance", "asset management",
	}},
	{DomainMarketing, "marketing", []string{
		"marketing automation", "campaign", "email marketing",
		"lead nurturing", "newsletter", "marketing campaign",
	}},
	{DomainRisk, "data_migration", []string{
		"migrate", "migration", "import data", "legacy system",
		"data transfer", "existing data", "historical data",
	}},
	{DomainRisk, "integration", []string{
		"integrate", "api", "connector", "sync",
		"integration", "external system", "third-party",
	}},
}

// negationWords flips a nearby match to a negative signal.
var negationWords = []string{
	"don't", "dont", "do not", "doesn't", "doesnt", "does not",
	"didn't", "didnt", "did not", "won't", "wont", "will not",
	"wouldn't", "wouldnt", "would not", "can't", "cant", "cannot",
	"aren't", "arent", "are not", "isn't", "isnt", "is not",
	"haven't", "havent", "have not", "hasn't", "hasnt", "has not",
	"never", "no", "not", "without", "lack", "neither", "nor",
	"stop", "stopped", "quit", "dropped", "eliminated",
}

// futureWords mark a match as planned rather than current.
var futureWords = []string{
	"plan to", "planning to", "want to", "going to", "will",
	"hope to", "looking to", "considering", "thinking about",
	"next year", "in the future", "eventually", "soon",
	"might", "maybe", "potentially", "explore",
}

// clauseBoundaries stop negation from bleeding across a contrasting clause.
var clauseBoundaries = map[string]bool{
	"but": true, "however": true, "although": true, "though": true,
	"yet": true, "whereas": true, "while": true, "instead": true,
}

// negationWindow is how many words before a match are scanned for negation.
const negationWindow = 8

// maxEvidencePerKey caps stored evidence excerpts per signal key.
const maxEvidencePerKey = 3
