// Package kernel provides the value objects shared by every aggregate of the marketplace.
//
//   - UUID identifies order and vendor records.
//   - Identity is an externally supplied principal id (customer, agent, vendor owner) or a
//     vendor record id, compared through its canonical form. Two representations of the
//     same id, such as "ObjectId(\"65A1...\")" and "65a1...", are the same principal.
//   - IdentitySet groups identities by canonical form. The vendor identity set is the
//     union of a vendor's record id and its owner id.
//   - GeoPoint is a validated latitude/longitude pair.
//
// Empty or malformed identities never match anything, including each other.
package kernel
