package api

import "encoding/json"

// Requestor identifies who is asking for a deployment. Requests without a
// complete requestor block are rejected before the pipeline runs.
type Requestor struct {
	LegalName     string `json:"legal_name"`
	WalletAddress string `json:"wallet_address"`
	SignatureHash string `json:"signature_hash"`
}

// DeployRequest is the body of POST /api/deploy.
type DeployRequest struct {
	Contract  string            `json:"contract"`
	Params    map[string]string `json:"params"`
	Requestor Requestor         `json:"requestor"`
	DryRun    bool              `json:"dry_run,omitempty"`
}

// DeployResponse is the response envelope. Success responses carry the
// deployed address and ABI; failures carry a message and, for validation
// failures only, the offending field and rule.
type DeployResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	ContractAddress string          `json:"contract_address,omitempty"`
	TxHash          string          `json:"tx_hash,omitempty"`
	ABI             json.RawMessage `json:"abi,omitempty"`
	Field           string          `json:"field,omitempty"`
	Rule            string          `json:"rule,omitempty"`
}

// TemplateInfo is one entry of GET /api/templates.
type TemplateInfo struct {
	ID          string   `json:"id"`
	Contract    string   `json:"contract"`
	Description string   `json:"description,omitempty"`
	Params      []string `json:"params"`
}
