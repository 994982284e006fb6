package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// CalculateResourceHash hashes the business fields of a resource object,
// excluding metadata columns, so sync passes can skip unchanged rows.
func CalculateResourceHash(obj interface{}) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}

	var objMap map[string]interface{}
	if err := json.Unmarshal(data, &objMap); err != nil {
		return "", err
	}

	excludeFields := []string{
		"id",
		"create_time",
		"createAt",
		"createdAt",
		"update_time",
		"updateAt",
		"updatedAt",
		"resource_hash",
		"last_sync_time",
		"creator",
		"modifier",
	}

	for _, field := range excludeFields {
		delete(objMap, field)
	}

	// serialize with sorted keys so the hash is stable
	keys := make([]string, 0, len(objMap))
	for k := range objMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	orderedMap := make(map[string]interface{})
	for _, k := range keys {
		orderedMap[k] = objMap[k]
	}

	cleanData, err := json.Marshal(orderedMap)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(cleanData)
	return hex.EncodeToString(hash[:]), nil
}
