package student

// OptionsTTL exposes optionsTTL to the external student_test package.
const OptionsTTL = optionsTTL
