package domain

// KeyPrefix namespaces every key docsim writes to the key-value store.
const KeyPrefix = "docsim:"
