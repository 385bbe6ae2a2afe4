package ledger

// ContractABI is the interface of the verification contract: a write that
// marks a 32-byte fingerprint as verified and the public mapping getter.
// Recording a fingerprint twice reverts with "already verified".
const ContractABI = `[
	{
		"type": "function",
		"name": "verifyDocument",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "documentHash", "type": "bytes32"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "verifiedDocuments",
		"stateMutability": "view",
		"inputs": [{"name": "", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "bool"}]
	}
]`

const (
	methodRecord   = "verifyDocument"
	methodRecorded = "verifiedDocuments"
)
