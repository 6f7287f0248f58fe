package docdex

import "strings"

// synonyms maps query terms to related provider vocabulary. Expansion pulls
// documents whose wording differs from the query (service codes vs full
// names, generic vs provider-specific terms) into embedding range.
var synonyms = map[string][]string{
	// Authentication and security
	"authentication": {"identity", "access", "management", "iam", "token", "credential", "login"},
	"authorization":  {"permission", "policy", "role", "privilege", "access control"},
	"security":       {"protection", "encryption", "firewall", "security group"},
	"api":            {"application programming interface", "rest", "sdk", "endpoint", "api gateway", "apig"},

	// Compute
	"ecs":      {"elastic cloud server", "virtual machine", "vm", "cloud server", "compute", "instance"},
	"instance": {"virtual machine", "vm", "server", "compute node"},
	"server":   {"instance", "vm", "host", "node"},
	"scaling":  {"auto-scaling", "elastic scaling", "scale-out", "scale-in"},

	// Storage
	"storage": {"object storage", "block storage", "file storage", "disk", "volume"},
	"obs":     {"object storage service", "bucket", "object", "s3"},
	"evs":     {"elastic volume service", "block storage", "disk", "volume"},
	"bucket":  {"obs", "object storage", "object"},
	"backup":  {"snapshot", "restore", "recovery", "archive"},

	// Networking
	"vpc":     {"virtual private cloud", "private network", "virtual network", "subnet"},
	"network": {"vpc", "subnet", "router", "gateway", "bandwidth", "eip", "elastic ip"},
	"subnet":  {"network segment", "ip range", "cidr"},
	"eip":     {"elastic ip", "public ip", "static ip"},
	"elb":     {"load balancer", "elastic load balance", "traffic management"},
	"cdn":     {"content delivery network", "acceleration", "edge cache"},

	// Databases and caching
	"database":   {"db", "relational database", "data store"},
	"rds":        {"relational database service", "mysql", "postgresql", "mariadb"},
	"mysql":      {"relational database", "rds", "database"},
	"postgresql": {"postgres", "relational database", "rds"},
	"redis":      {"cache", "key-value", "memory database", "in-memory"},
	"cache":      {"redis", "in-memory", "key-value"},

	// Containers
	"cce":        {"cloud container engine", "kubernetes", "k8s", "container", "orchestration"},
	"kubernetes": {"k8s", "container", "orchestration", "cce", "cluster"},
	"docker":     {"container", "image", "containerization"},

	// Operations
	"create":       {"provision", "launch", "deploy", "set up", "initialize"},
	"delete":       {"remove", "destroy", "terminate", "clean up"},
	"configure":    {"setup", "setting", "configuration", "parameter"},
	"deploy":       {"create", "launch", "install", "provision"},
	"troubleshoot": {"debug", "fix", "resolve", "error"},
	"error":        {"exception", "failure", "issue", "problem"},

	// Pricing
	"price":   {"cost", "pricing", "billing", "fee", "charge", "free tier"},
	"billing": {"cost", "pricing", "payment", "invoice"},
	"quota":   {"limit", "restriction", "threshold", "maximum"},

	// Migration
	"migrate": {"transfer", "move", "import", "export", "migration"},
}

// ExpandQuery appends thesaurus expansions of each query word. The original
// query always comes first so its own terms dominate the embedding.
func ExpandQuery(query string) string {
	expanded := []string{query}
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?;:")
		if terms, ok := synonyms[word]; ok {
			expanded = append(expanded, terms...)
		}
	}
	return strings.Join(expanded, " ")
}
