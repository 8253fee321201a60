// Package regulator classifies device tree nodes and walks a tree to build
// its power-supply graph.
//
// A node is a Regulator when it declares "regulator-name" or any property
// starting with "regulator-m". Otherwise it is a SupplyConsumer when it has at
// least one property ending in "-supply". Supply properties hold a phandle to
// the regulator feeding the node.
//
// Regulators without a compatible string are usually embedded in a PMIC or
// another device. FindOwner climbs a bounded number of ancestors, evaluating
// an ordered list of OwnerRule values, to find the device they belong to.
//
// Lookups never fail hard. A missing property, a short payload or a dangling
// phandle is "no result" and the Walker carries on. The reason is recorded in
// the decision trace.
package regulator
