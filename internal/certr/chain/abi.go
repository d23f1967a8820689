package chain

// contractABI covers the slice of the certificate contract this system
// consumes: single and bulk mint, revocation, the two verification views,
// role inspection, and the issuance/revocation events.
const contractABI = `[
  {
    "type": "function", "name": "mintCertificate", "stateMutability": "nonpayable",
    "inputs": [
      {"name": "receiver", "type": "address"},
      {"name": "metadataURI", "type": "string"},
      {"name": "metadataHash", "type": "bytes32"}
    ],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function", "name": "batchMint", "stateMutability": "nonpayable",
    "inputs": [
      {"name": "receivers", "type": "address[]"},
      {"name": "metadataURIs", "type": "string[]"},
      {"name": "metadataHashes", "type": "bytes32[]"}
    ],
    "outputs": [{"name": "", "type": "uint256[]"}]
  },
  {
    "type": "function", "name": "revokeCertificate", "stateMutability": "nonpayable",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": []
  },
  {
    "type": "function", "name": "verifyCertificate", "stateMutability": "view",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": [
      {"name": "exists", "type": "bool"},
      {"name": "revoked", "type": "bool"},
      {"name": "recipient", "type": "address"},
      {"name": "metadataURI", "type": "string"},
      {"name": "metadataHash", "type": "bytes32"},
      {"name": "issuedAt", "type": "uint256"}
    ]
  },
  {
    "type": "function", "name": "verifyCertificateByHash", "stateMutability": "view",
    "inputs": [{"name": "metadataHash", "type": "bytes32"}],
    "outputs": [
      {"name": "exists", "type": "bool"},
      {"name": "tokenId", "type": "uint256"},
      {"name": "revoked", "type": "bool"},
      {"name": "recipient", "type": "address"}
    ]
  },
  {
    "type": "function", "name": "hasRole", "stateMutability": "view",
    "inputs": [
      {"name": "role", "type": "bytes32"},
      {"name": "account", "type": "address"}
    ],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "type": "event", "name": "CertificateIssued", "anonymous": false,
    "inputs": [
      {"name": "to", "type": "address", "indexed": true},
      {"name": "tokenId", "type": "uint256", "indexed": true},
      {"name": "uri", "type": "string", "indexed": false},
      {"name": "metadataHash", "type": "bytes32", "indexed": false}
    ]
  },
  {
    "type": "event", "name": "CertificateRevoked", "anonymous": false,
    "inputs": [
      {"name": "tokenId", "type": "uint256", "indexed": true},
      {"name": "revoker", "type": "address", "indexed": true}
    ]
  }
]`
